package handler

const (
	errInternalServer = "Internal server error"
	errJobNotFound    = "Job not found"
	errInvalidJobID   = "Job id must be a UUID"
)
