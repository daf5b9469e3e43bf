package session

import (
	"github.com/sirupsen/logrus"

	"github.com/jacobarthurs/profileviz/internal/config"
	"github.com/jacobarthurs/profileviz/internal/profile"
)

// View owns the single active session. Loading a profile builds a complete
// new session before swapping it in, so a failed load leaves the previous
// one untouched. A View is not safe for concurrent use.
type View struct {
	cfg     config.Config
	opts    Options
	current *Session
}

func NewView(cfg config.Config, opts Options) *View {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &View{cfg: cfg, opts: opts}
}

// Current returns the active session, or nil before the first load.
func (v *View) Current() *Session {
	return v.current
}

func (v *View) Load(doc *profile.Document) (*Session, error) {
	s, err := New(doc, v.cfg, v.opts)
	if err != nil {
		v.opts.Logger.WithError(err).WithField("query", doc.QueryID).Error("profile load failed; keeping previous view")
		return nil, err
	}
	if v.current != nil {
		v.opts.Logger.WithField("session", v.current.ID.String()).Debug("session replaced")
	}
	v.current = s
	return s, nil
}

func (v *View) Close() {
	if v.current == nil {
		return
	}
	v.opts.Logger.WithField("session", v.current.ID.String()).Debug("session closed")
	v.current = nil
}
