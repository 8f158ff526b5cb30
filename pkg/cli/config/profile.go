package config

import (
	"github.com/secmon-lab/nudgebot/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Profile holds the texts of the Home tab profile form
type Profile struct {
	question string
	header   string
}

func (x *Profile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profile-question",
			Usage:       "Question asked on the Home tab",
			Category:    "Profile",
			Value:       usecase.DefaultProfileQuestion,
			Sources:     cli.EnvVars("NUDGEBOT_PROFILE_QUESTION"),
			Destination: &x.question,
		},
		&cli.StringFlag{
			Name:        "home-header",
			Usage:       "Greeting shown above the question",
			Category:    "Profile",
			Value:       usecase.DefaultHomeHeader,
			Sources:     cli.EnvVars("NUDGEBOT_HOME_HEADER"),
			Destination: &x.header,
		},
	}
}

func (x *Profile) UseCaseConfig() usecase.ProfileConfig {
	return usecase.ProfileConfig{
		Header:   x.header,
		Question: x.question,
	}
}
