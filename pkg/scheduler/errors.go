package scheduler

import "github.com/cockroachdb/errors"

var (
	ErrInvalidConfig = errors.New("scheduler: invalid config")
	ErrDuplicateJob  = errors.New("scheduler: duplicate job name")
	ErrJobNotFound   = errors.New("scheduler: job not found")
)
