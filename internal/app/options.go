package service

import (
	"github.com/okian/cascade/internal/adapters/mq/worker"
	"github.com/okian/cascade/internal/adapters/repository"
	"github.com/okian/cascade/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTracks sets the track sources in allocation order and their capacities.
func WithTracks(files []string, capacities []int) Option {
	return func(s *Service) {
		s.files = files
		s.capacities = capacities
	}
}

// WithApplicant sets the applicant the default report is built for.
func WithApplicant(id string) Option {
	return func(s *Service) { s.applicantID = id }
}

// WithWorkerCount sets the number of concurrent track loaders.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the load job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLoader sets the track loader.
func WithLoader(l worker.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithStore sets the snapshot store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
