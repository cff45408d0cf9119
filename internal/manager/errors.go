package manager

import "errors"

// tooBusyError signals queue timeout/overflow or a draining service.
type tooBusyError struct{ service string }

func (e tooBusyError) Error() string { return "too busy: " + e.service }

// IsTooBusy reports whether err indicates backpressure.
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

type notFoundError struct{ kind, id string }

func (e notFoundError) Error() string { return e.kind + " not found: " + e.id }

// ErrServiceNotFound returns an error for an unknown service name.
func ErrServiceNotFound(name string) error { return notFoundError{kind: "service", id: name} }

// ErrJobNotFound returns an error for an unknown training job id.
func ErrJobNotFound(id string) error { return notFoundError{kind: "job", id: id} }

// IsNotFound reports whether err names a missing service or job.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

type serviceExistsError struct{ name string }

func (e serviceExistsError) Error() string { return "service already exists: " + e.name }

// IsServiceExists reports whether err is a duplicate service creation.
func IsServiceExists(err error) bool {
	var e serviceExistsError
	return errors.As(err, &e)
}

// trainingBusyError is returned when a service is already training, or when
// an offline service is asked to predict while it trains.
type trainingBusyError struct {
	service string
	predict bool
}

func (e trainingBusyError) Error() string {
	if e.predict {
		return "service " + e.service + " is training and does not predict while training"
	}
	return "service " + e.service + " is already training"
}

// IsTrainingBusy reports whether err was caused by a running training job.
func IsTrainingBusy(err error) bool {
	var e trainingBusyError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a backend whose runtime this binary was
// built without, so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}
