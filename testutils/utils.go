package testutils

import (
	"flag"
	"log"
	"net/http"
	"os"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var TestOpts TestOptions

type TestOptions struct {
	LiveTest      bool
	Host          string
	Token         string
	EnvironmentId int64
	ProjectDir    string
	RunName       string
}

func envFlagString(envName, name, value, usage string) *string {
	envValue := os.Getenv(envName)
	if envValue != "" {
		value = envValue
	}
	return flag.String(name, value, usage)
}

var host = envFlagString("DBT_TEST_HOST", "host", "",
	"Platform hostname to run live tests against")
var token = envFlagString("DBT_TEST_TOKEN", "token", "",
	"Service token to use for live tests")
var envId = envFlagString("DBT_TEST_ENV_ID", "env-id", "",
	"Environment id to use for live tests")
var projectDir = envFlagString("DBT_TEST_PROJECT_DIR", "project-dir", "",
	"Local dbt project directory for cli tests")

func SetupTests(m *testing.M) {
	initialGoroutineCount := runtime.NumGoroutine()
	flag.Parse()

	if *host != "" && *token != "" && !testing.Short() {
		parsedEnvId, err := strconv.ParseInt(*envId, 10, 64)
		if err != nil {
			panic("failed to parse environment id")
		}

		TestOpts.LiveTest = true
		TestOpts.Host = *host
		TestOpts.Token = *token
		TestOpts.EnvironmentId = parsedEnvId
		TestOpts.ProjectDir = *projectDir
	}

	TestOpts.RunName = strings.ReplaceAll(uuid.NewString(), "-", "")[0:8]

	result := m.Run()

	// We need to close the transport used by the default client once tests complete, otherwise the transport
	// will leak go routines.
	http.DefaultClient.CloseIdleConnections()
	// Loop for at most a second checking for goroutines leaks, this gives any HTTP goroutines time to shutdown
	start := time.Now()
	var finalGoroutineCount int
	for time.Since(start) <= 1*time.Second {
		runtime.Gosched()
		finalGoroutineCount = runtime.NumGoroutine()
		if finalGoroutineCount == initialGoroutineCount {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if finalGoroutineCount != initialGoroutineCount {
		log.Printf("Detected a goroutine leak (%d before != %d after)", initialGoroutineCount, finalGoroutineCount)
		pprof.Lookup("goroutine").WriteTo(os.Stdout, 1)
		result = 1
	} else {
		log.Printf("No goroutines appear to have leaked (%d before == %d after)", initialGoroutineCount, finalGoroutineCount)
	}

	os.Exit(result)
}

func SkipIfNoLiveGateway(t *testing.T) {
	if !TestOpts.LiveTest {
		t.Skipf("skipping live gateway test")
	}
}

func MakeTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	return logger
}

// RoundTripFunc lets a test stand in for an http transport.
type RoundTripFunc func(req *http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
