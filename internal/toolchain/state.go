package toolchain

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/Norgate-AV/rustpack/internal/config"
)

// State is the condition of the cached toolchain
type State int

const (
	NoCache State = iota
	CachedFresh
	CachedStale
	Installed
)

func (s State) String() string {
	switch s {
	case NoCache:
		return "no cache"
	case CachedFresh:
		return "fresh"
	case CachedStale:
		return "stale"
	case Installed:
		return "installed"
	default:
		return "unknown"
	}
}

// Inspect decides whether the cached toolchain can be used as is.
// Errors are upstream lookup failures.
func (p *Provisioner) Inspect(ctx context.Context) (State, error) {
	if !fileExists(p.Layout.Compiler()) {
		return NoCache, nil
	}

	reported, err := p.reportedVersion(ctx)
	if err != nil {
		p.Log.Warn().Err(err).Msg("Cached compiler did not report its version.")
		return CachedStale, nil
	}

	p.Log.Debug().
		Str("version", reported.Version).
		Str("hash", reported.Hash).
		Str("date", reported.Date).
		Msg("Found cached compiler")

	channel := p.Config.Channel

	switch p.Config.Kind() {
	case config.FixedRelease:
		want := p.Config.Revision
		if want == "" {
			want, err = p.Upstream.LatestVersion(ctx, channel)
			if err != nil {
				return CachedStale, err
			}
		}

		if versionsMatch(reported.Version, want) {
			return CachedFresh, nil
		}

		p.Log.Debug().Str("cached", reported.Version).Str("wanted", want).Msg("Version mismatch")

		return CachedStale, nil
	case config.Rolling:
		if p.Config.Date != "" {
			if !builtForChannel(reported.Version, channel) {
				p.Log.Debug().Str("cached", reported.Version).Str("channel", channel).Msg("Cached compiler is from another channel")
				return CachedStale, nil
			}

			return p.inspectPinnedDate(), nil
		}

		latest, err := p.Upstream.LatestHash(ctx, channel)
		if err != nil {
			return CachedStale, err
		}

		if hashesMatch(reported.Hash, latest) {
			return CachedFresh, nil
		}

		p.Log.Debug().Str("cached", reported.Hash).Str("latest", latest).Msg("Commit mismatch")

		return CachedStale, nil
	}

	return CachedStale, eris.Errorf("unrecognized channel %q", channel)
}

// inspectPinnedDate trusts a cached toolchain for a dated pin unless the
// ledger shows it was installed for a different channel or date.
// The compiler's own date is its commit date, which lags the pin.
func (p *Provisioner) inspectPinnedDate() State {
	if p.Ledger == nil {
		return CachedFresh
	}

	last, err := p.Ledger.Last()
	if err != nil {
		p.Log.Warn().Err(err).Msg("Could not read the install ledger.")
		return CachedFresh
	}

	if last == nil || last.Matches(p.Config.Channel, p.Config.Date) {
		return CachedFresh
	}

	p.Log.Debug().Str("channel", last.Channel).Str("pin", last.Pin).Msg("Cached toolchain was installed for another pin")

	return CachedStale
}

func (p *Provisioner) reportedVersion(ctx context.Context) (Reported, error) {
	out, err := p.Runner.Output(ctx, p.versionCommand())
	if err != nil {
		return Reported{}, eris.Wrap(err, "rustc --version failed")
	}

	return ParseVersion(string(out))
}
