package logger

// Trace returns a logging helper bound to a trace id, so stage code can
// write logger.Trace(traceID).Info("...", "rows", n) instead of threading
// the trace id through every field list by hand.
func Trace(traceID string) *TraceLogger {
	return &TraceLogger{traceID: traceID}
}

// TraceLogger prefixes every emitted entry with the bound trace id.
type TraceLogger struct {
	traceID string
}

func (t *TraceLogger) Debug(msg string, fields ...interface{}) {
	Debug(msg, append([]interface{}{"trace_id", t.traceID}, fields...)...)
}

func (t *TraceLogger) Info(msg string, fields ...interface{}) {
	Info(msg, append([]interface{}{"trace_id", t.traceID}, fields...)...)
}

func (t *TraceLogger) Warn(msg string, fields ...interface{}) {
	Warn(msg, append([]interface{}{"trace_id", t.traceID}, fields...)...)
}

func (t *TraceLogger) Error(msg string, fields ...interface{}) {
	Error(msg, append([]interface{}{"trace_id", t.traceID}, fields...)...)
}
