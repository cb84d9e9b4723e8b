// Package logging builds the logr.Logger shared by every component.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

// New returns a zap-backed logger. Development mode logs human readable
// console lines at debug level; otherwise JSON at info level.
func New(devMode bool) (logr.Logger, error) {
	var (
		zl  *zap.Logger
		err error
	)
	if devMode {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}
