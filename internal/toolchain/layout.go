package toolchain

import (
	"os"
	"path/filepath"
)

// Layout names the files a provisioned cache directory holds
type Layout struct {
	Root string
}

// NewLayout returns the layout of cacheDir
func NewLayout(cacheDir string) Layout {
	return Layout{Root: cacheDir}
}

// Installer is the rustup script
func (l Layout) Installer() string { return filepath.Join(l.Root, "rustup") }

// Toolchain is the install prefix handed to the installer
func (l Layout) Toolchain() string { return filepath.Join(l.Root, "rust") }

func (l Layout) BinDir() string { return filepath.Join(l.Toolchain(), "bin") }

func (l Layout) LibDir() string { return filepath.Join(l.Toolchain(), "lib") }

func (l Layout) Compiler() string { return filepath.Join(l.BinDir(), "rustc") }

func (l Layout) Cargo() string { return filepath.Join(l.BinDir(), "cargo") }

// CargoHome holds cargo's registry and git caches
func (l Layout) CargoHome() string { return filepath.Join(l.Root, "cargo") }

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
