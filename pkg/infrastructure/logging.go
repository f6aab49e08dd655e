// Package infrastructure provides reusable infrastructure components for Go applications.
package infrastructure

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxLoggerAdapter routes Fx framework events through a zap.SugaredLogger.
// Lifecycle noise is logged at debug level; failures are promoted to error.
type FxLoggerAdapter struct {
	logger *zap.SugaredLogger
}

// NewFxLoggerAdapter creates a new Fx logger adapter that implements fxevent.Logger.
func NewFxLoggerAdapter(logger *zap.Logger) fxevent.Logger {
	return &FxLoggerAdapter{logger: logger.Sugar()}
}

// LogEvent implements fxevent.Logger.
func (a *FxLoggerAdapter) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		a.logger.Debugf("HOOK OnStart executing: %s, function: %s", e.CallerName, e.FunctionName)
	case *fxevent.OnStartExecuted:
		a.hookResult("HOOK OnStart", e.CallerName, e.FunctionName, e.Err)
	case *fxevent.OnStopExecuting:
		a.logger.Debugf("HOOK OnStop executing: %s, function: %s", e.CallerName, e.FunctionName)
	case *fxevent.OnStopExecuted:
		a.hookResult("HOOK OnStop", e.CallerName, e.FunctionName, e.Err)
	case *fxevent.Supplied:
		a.graphResult("SUPPLY", e.TypeName, e.Err)
	case *fxevent.Provided:
		for _, name := range e.OutputTypeNames {
			a.graphResult("PROVIDE", name, e.Err)
		}
	case *fxevent.Invoking:
		a.logger.Debugf("INVOKE: %s", e.FunctionName)
	case *fxevent.Invoked:
		a.graphResult("INVOKE", e.FunctionName, e.Err)
	case *fxevent.Started:
		a.terminal("STARTED", e.Err)
	case *fxevent.Stopping:
		a.logger.Infof("STOPPING: %s", e.Signal)
	case *fxevent.Stopped:
		a.terminal("STOPPED", e.Err)
	case *fxevent.RollingBack:
		a.logger.Errorf("ROLLING BACK: %v", e.StartErr)
	case *fxevent.RolledBack:
		a.terminal("ROLLED BACK", e.Err)
	case *fxevent.LoggerInitialized:
		a.graphResult("LOGGER INITIALIZED", e.ConstructorName, e.Err)
	default:
		a.logger.Debugf("UNKNOWN Fx event: %T", event)
	}
}

func (a *FxLoggerAdapter) hookResult(action, caller, function string, err error) {
	if err != nil {
		a.logger.Errorf("%s failed: %s, function: %s, error: %v", action, caller, function, err)
	} else {
		a.logger.Debugf("%s executed: %s, function: %s", action, caller, function)
	}
}

func (a *FxLoggerAdapter) graphResult(action, name string, err error) {
	if err != nil {
		a.logger.Errorf("%s failed: %s, error: %v", action, name, err)
	} else {
		a.logger.Debugf("%s: %s", action, name)
	}
}

func (a *FxLoggerAdapter) terminal(action string, err error) {
	if err != nil {
		a.logger.Errorf("%s with error: %v", action, err)
	} else {
		a.logger.Info(action)
	}
}
