package dashboard

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
)

// addressTag validates bech32 MultiversX addresses in binding tags.
const addressTag = "erd_address"

var registerValidations = sync.OnceValue(func() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
	}

	return v.RegisterValidation(addressTag, func(fl validator.FieldLevel) bool {
		return multiversx.IsValidAddress(fl.Field().String())
	})
})
