package types

type Repository string

const (
	RepositoryValidated Repository = "validated"
	RepositoryCertified Repository = "certified"
)

// AllRepositories lists the content repositories in report order.
var AllRepositories = []Repository{RepositoryValidated, RepositoryCertified}

type RowStatus string

const (
	RowStatusOK         RowStatus = "ok"
	RowStatusMissing    RowStatus = "missing"
	RowStatusParseError RowStatus = "parse_error"
)

type ConstraintOp string

const (
	ConstraintOpNone   ConstraintOp = ""
	ConstraintOpEq     ConstraintOp = "="
	ConstraintOpEq2    ConstraintOp = "=="
	ConstraintOpNe     ConstraintOp = "!="
	ConstraintOpCompat ConstraintOp = "~="
	ConstraintOpGte    ConstraintOp = ">="
	ConstraintOpLte    ConstraintOp = "<="
	ConstraintOpGt     ConstraintOp = ">"
	ConstraintOpLt     ConstraintOp = "<"
)
