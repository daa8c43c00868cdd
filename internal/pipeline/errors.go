package pipeline

import "errors"

var (
	ErrEngineUnavailable  = errors.New("container engine unavailable")
	ErrStaging            = errors.New("staging failed")
	ErrBuild              = errors.New("image build failed")
	ErrMissingCredentials = errors.New("registry credentials missing")
	ErrLogin              = errors.New("registry login failed")
	ErrPush               = errors.New("image push failed")
)
