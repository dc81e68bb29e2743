package rest

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/strapiclient/internal/logging"
)

// restyLogger routes resty's printf-style diagnostics into the structured logger.
type restyLogger struct {
	log logging.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(context.Background(), fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(context.Background(), fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(context.Background(), fmt.Sprintf(format, v...), "component", "resty")
}
