package zaputils

import (
	"fmt"

	"go.uber.org/zap"
)

func QueryId(key string, val string) zap.Field {
	return zap.String(key, val)
}

func ModelName(key string, val string) zap.Field {
	return zap.String(key, val)
}

func MetricNames(key string, vals []string) zap.Field {
	return zap.Strings(key, vals)
}

type redactedToken string

// Tokens never reach the logs in full, only enough of a prefix to tell
// two credentials apart.
func (t redactedToken) String() string {
	if len(t) <= 8 {
		return "****"
	}
	return fmt.Sprintf("%s****", t[0:8])
}

func Token(key string, val string) zap.Field {
	return zap.Stringer(key, redactedToken(val))
}
