package executor

// Status is the overall outcome of an execution.
type Status string

// Execution statuses.
const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// Result is the outcome of Execute or ExecuteMultiple. Err is set only
// when Status is StatusError.
type Result struct {
	Status    Status
	Succeeded int
	Failed    int
	Err       *ActionError
}

// OK reports whether at least part of the action was carried out.
func (r Result) OK() bool {
	return r.Status == StatusSuccess || r.Status == StatusPartial
}

func success(n int) Result {
	return Result{Status: StatusSuccess, Succeeded: n}
}

func partial(succeeded, failed int) Result {
	return Result{Status: StatusPartial, Succeeded: succeeded, Failed: failed}
}

func failure(err *ActionError) Result {
	return Result{Status: StatusError, Err: err}
}
