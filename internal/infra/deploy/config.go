package deploy

import (
	"os"

	"github.com/sitehatch/sitehatch-backend/pkg/env"
)

type DeployConfig struct {
	APIURL   string
	Token    string
	Provider string
}

func NewDeployConfig() *DeployConfig {
	return &DeployConfig{
		APIURL:   env.GetEnv("DEPLOY_API_URL", "https://api.netlify.com/api/v1"),
		Token:    os.Getenv("DEPLOY_TOKEN"),
		Provider: env.GetEnv("DEPLOY_PROVIDER", "netlify"),
	}
}
