package nylas

import (
	"github.com/go-playground/validator/v10"
)

// validate is shared by every struct check in the package. Validators are
// safe for concurrent use and cache struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())
