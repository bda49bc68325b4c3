package scopetimer

import (
	"errors"

	"golang.org/x/exp/slog"
)

// # Scope
//
// Represents an open scope returned by [Local.Profile].
// Its zero value has no meaning. The usual pattern ends it with defer so that
// the scope closes on every exit path:
//
//	defer l.Profile("load").End()
type Scope struct {
	local *Local
	name  string
	done  bool
}

// noopScope is handed out while timing is disabled; it is never mutated.
var noopScope = &Scope{}

// Profile opens the scope name and returns a guard closing it.
// While timing is disabled it returns a shared no-op guard.
func (l *Local) Profile(name string) *Scope {
	if !enabled.Load() {
		return noopScope
	}

	l.Begin(name)
	return &Scope{local: l, name: name}
}

// Name returns the scope name of s.
func (s *Scope) Name() string {
	return s.name
}

// End closes the scope. Only the first call has an effect.
// A mismatch is logged before being returned, so a deferred End never loses it.
func (s *Scope) End() error {
	if s.local == nil || s.done {
		return nil
	}
	s.done = true

	if err := s.local.End(s.name); err != nil {
		logger.Error("scope guard could not close its scope",
			slog.String("scope", s.name),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Time runs fn inside the scope name. The scope is closed whether fn returns
// or panics; a scope error is joined to the error of fn.
func (l *Local) Time(name string, fn func() error) (err error) {
	if !enabled.Load() {
		return fn()
	}

	l.Begin(name)
	defer func() {
		if endErr := l.End(name); endErr != nil {
			err = errors.Join(err, endErr)
		}
	}()

	return fn()
}
