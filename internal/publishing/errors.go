package publishing

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store/dberror"
)

// validate is the shared validator.v10 instance every create/update params
// struct below is checked against, the same way the teacher's
// catalogmanager package runs request-shaped structs through one package
// validator and maps failures onto its own validation error.
var validate = validator.New()

// validateStruct runs v against validate and, on failure, folds every
// field error into one dberror.ErrValidation message (spec §7
// "ValidationError").
func validateStruct(v interface{}) apperrors.Error {
	if err := validate.Struct(v); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return dberror.ErrValidation.Err(err)
		}
		msg := ""
		for i, fe := range verrs {
			if i > 0 {
				msg += "; "
			}
			msg += fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag())
		}
		return dberror.ErrValidation.Msg(msg)
	}
	return nil
}

func validationErr(msg string) apperrors.Error {
	return dberror.ErrValidation.Msg(msg)
}

func notFoundErr(msg string) apperrors.Error {
	return dberror.ErrNotFound.Msg(msg)
}

func invariantErr(msg string) apperrors.Error {
	return dberror.ErrInvariant.Msg(msg)
}

func wrongKindErr(msg string) apperrors.Error {
	return dberror.ErrWrongKind.Msg(msg)
}

func conflictErr(msg string) apperrors.Error {
	return dberror.ErrConflict.Msg(msg)
}
