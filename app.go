package main

import (
	"errors"
	"io"
	"os"

	"github.com/muhammadolammi/skillscan/internal/config"
	"github.com/muhammadolammi/skillscan/internal/extract"
	"github.com/muhammadolammi/skillscan/internal/logger"
	"github.com/muhammadolammi/skillscan/internal/notify"
	"github.com/muhammadolammi/skillscan/internal/scan"
	"github.com/muhammadolammi/skillscan/internal/skills"
	"github.com/rs/zerolog"
)

// logOutput is where every command logs; tests swap it for a buffer.
var logOutput io.Writer = os.Stderr

type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	scanner   *scan.Scanner
	publisher notify.Publisher
}

// newApp loads the config and builds the shared pieces every command needs.
// workers overrides the configured worker count when positive.
func newApp(workers int) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	log := logger.InitWithWriter(cfg.Logger, logOutput)

	scanner := scan.New(extract.Default(),
		scan.WithLogger(logger.Component("scan")),
		scan.WithWorkers(cfg.Workers),
	)
	a := &app{
		cfg:       cfg,
		logger:    log,
		scanner:   scanner,
		publisher: notify.Nop(),
	}

	if cfg.RabbitMQ.URL != "" {
		pub, err := notify.DialAMQP(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			// events are optional; scanning still works without the broker
			log.Error().Err(err).Msg("RabbitMQ unavailable, scan events disabled")
		} else {
			a.publisher = pub
		}
	}
	return a, nil
}

// matcher compiles the skill list from the flag value, falling back to
// the configured list.
func (a *app) matcher(flagValue string) (*skills.Matcher, error) {
	set := skills.Parse(flagValue)
	if set.Len() == 0 {
		set = skills.New(a.cfg.Skills)
	}
	if set.Len() == 0 {
		return nil, errors.New("no predefined skills: pass --skills or set skills in the config")
	}
	return skills.Compile(set)
}

func (a *app) Close() error {
	return a.publisher.Close()
}
