package log

import "github.com/sirupsen/logrus"

// BadgerAdapter routes BadgerDB's logger interface into logrus so the
// result store logs through the same pipeline as everything else
type BadgerAdapter struct {
	*logrus.Entry
}

// NewBadgerAdapter wraps a logrus entry (usually carrying a component field)
func NewBadgerAdapter(entry *logrus.Entry) *BadgerAdapter {
	return &BadgerAdapter{entry}
}

func (l *BadgerAdapter) Errorf(f string, v ...interface{})   { l.Entry.Errorf(f, v...) }
func (l *BadgerAdapter) Warningf(f string, v ...interface{}) { l.Entry.Warningf(f, v...) }
func (l *BadgerAdapter) Infof(f string, v ...interface{})    { l.Entry.Infof(f, v...) }
func (l *BadgerAdapter) Debugf(f string, v ...interface{})   { l.Entry.Debugf(f, v...) }
