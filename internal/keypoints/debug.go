package keypoints

import (
	"io"
	"log"
)

// Stage logging. All three streams are off until SetLogWriters is called.
var (
	// opsLogger reports runs that cannot produce descriptors at all, such
	// as a grid smaller than the orientation patch.
	opsLogger *log.Logger

	// diagLogger gets one summary line per Extract call.
	diagLogger *log.Logger

	// traceLogger gets the candidate and drop counts of each stage.
	traceLogger *log.Logger
)

// SetLogWriters routes the ops, diag and trace streams of the pipeline.
// A nil writer turns its stream off.
func SetLogWriters(ops, diag, trace io.Writer) {
	opsLogger = newLogger(ops)
	diagLogger = newLogger(diag)
	traceLogger = newLogger(trace)
}

func newLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, "[keypoints] ", log.LstdFlags|log.Lmicroseconds)
}

func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

func tracef(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}
