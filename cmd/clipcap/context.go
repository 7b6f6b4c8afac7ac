package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"clipcap/internal/config"
)

type commandContext struct {
	addressFlag *string
	configFlag  *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(addressFlag, configFlag *string) *commandContext {
	return &commandContext{
		addressFlag: addressFlag,
		configFlag:  configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// apiAddress picks the daemon address: the --address flag wins, then the
// configured bind, then the compiled-in default.
func (c *commandContext) apiAddress() string {
	if c.addressFlag != nil && strings.TrimSpace(*c.addressFlag) != "" {
		return strings.TrimSpace(*c.addressFlag)
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil && strings.TrimSpace(cfg.Paths.APIBind) != "" {
		return strings.TrimSpace(cfg.Paths.APIBind)
	}
	return config.Default().Paths.APIBind
}

func (c *commandContext) client() *apiClient {
	return newAPIClient(c.apiAddress())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
