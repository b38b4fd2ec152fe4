package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type config struct {
	Host                   string
	MulticellAccountPrefix string
	EnvironmentId          int64
	UserId                 int64
	Token                  string

	ProjectDir    string
	DbtPath       string
	DbtGlobalArgs []string

	DisableSemanticLayer bool
	DisableDiscovery     bool
	DisableCli           bool
	DisableRemote        bool
}

func envBool(name string) bool {
	val := strings.ToLower(os.Getenv(name))
	return val == "true" || val == "1"
}

// loadConfig reads the environment and reports every problem at once
// rather than failing on the first one.
func loadConfig() (*config, error) {
	cfg := &config{
		Host:                   os.Getenv("DBT_HOST"),
		MulticellAccountPrefix: os.Getenv("MULTICELL_ACCOUNT_PREFIX"),
		Token:                  os.Getenv("DBT_TOKEN"),
		ProjectDir:             os.Getenv("DBT_PROJECT_DIR"),
		DbtPath:                os.Getenv("DBT_PATH"),
		DisableSemanticLayer:   envBool("DISABLE_SEMANTIC_LAYER"),
		DisableDiscovery:       envBool("DISABLE_DISCOVERY"),
		DisableCli:             envBool("DISABLE_DBT_CLI"),
		DisableRemote:          envBool("DISABLE_REMOTE"),
	}

	if cliArgs := os.Getenv("DBT_CLI_ARGS"); cliArgs != "" {
		cfg.DbtGlobalArgs = strings.Fields(cliArgs)
	}

	if cfg.DbtPath == "" {
		switch executableType := os.Getenv("DBT_EXECUTABLE_TYPE"); executableType {
		case "", "core":
			cfg.DbtPath = "dbt"
		case "cloud":
			cfg.DbtPath = "dbt-cloud"
		default:
			return nil, errors.Errorf(
				"DBT_EXECUTABLE_TYPE must be core or cloud, got %q", executableType)
		}
	}

	var problems []error

	remoteEnabled := !cfg.DisableSemanticLayer || !cfg.DisableDiscovery
	if remoteEnabled {
		if cfg.Host == "" {
			problems = append(problems, errors.New("DBT_HOST must be set"))
		} else if strings.HasPrefix(cfg.Host, "metadata.") ||
			strings.HasPrefix(cfg.Host, "semantic-layer.") {
			problems = append(problems,
				errors.New("DBT_HOST must be the platform host, not a service endpoint"))
		}

		if cfg.Token == "" {
			problems = append(problems, errors.New("DBT_TOKEN must be set"))
		}

		envIdStr := os.Getenv("DBT_ENV_ID")
		if envIdStr == "" {
			problems = append(problems, errors.New("DBT_ENV_ID must be set"))
		} else {
			envId, err := strconv.ParseInt(envIdStr, 10, 64)
			if err != nil || envId <= 0 {
				problems = append(problems,
					errors.Errorf("DBT_ENV_ID must be a positive integer, got %q", envIdStr))
			} else {
				cfg.EnvironmentId = envId
			}
		}
	}

	// The user id is only needed for the hosted remote tools and stays
	// optional.
	if userIdStr := os.Getenv("DBT_USER_ID"); userIdStr != "" {
		userId, err := strconv.ParseInt(userIdStr, 10, 64)
		if err != nil || userId <= 0 {
			problems = append(problems,
				errors.Errorf("DBT_USER_ID must be a positive integer, got %q", userIdStr))
		} else {
			cfg.UserId = userId
		}
	}

	if !cfg.DisableCli && cfg.ProjectDir == "" {
		problems = append(problems, errors.New("DBT_PROJECT_DIR must be set when the dbt cli tools are enabled"))
	}

	if len(problems) > 0 {
		msgs := make([]string, 0, len(problems))
		for _, problem := range problems {
			msgs = append(msgs, problem.Error())
		}
		return nil, errors.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	return cfg, nil
}
