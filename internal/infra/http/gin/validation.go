package ginserver

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"plek/internal/domain/pricing"
)

var registerValidationsOnce sync.Once

// registerValidations hooks domain-aware rules into gin's request binding.
func registerValidations() {
	registerValidationsOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("packagetype", func(fl validator.FieldLevel) bool {
			return pricing.ValidPackage(pricing.PackageType(fl.Field().String()))
		})
	})
}
