package utils_test

import (
	"strings"
	"testing"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct(t *testing.T) {
	validate := utils.NewValidator()

	t.Run("Valid", func(t *testing.T) {
		err := utils.ValidateStruct(validate, &models.UpdateQuantityRequest{Quantity: 99})
		assert.NoError(t, err)
	})

	t.Run("Quantity bounds", func(t *testing.T) {
		for _, q := range []int{0, -1, 100} {
			err := utils.ValidateStruct(validate, &models.UpdateQuantityRequest{Quantity: q})
			require.Error(t, err, "quantity %d", q)

			appErr, ok := appErrors.IsAppError(err)
			require.True(t, ok)
			assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
			assert.Contains(t, appErr.Fields, "quantity")
		}
	})

	t.Run("JSON field names", func(t *testing.T) {
		req := &models.RegisterRequest{Email: "nope", Password: "pw"}

		err := utils.ValidateStruct(validate, req)
		require.Error(t, err)

		appErr, _ := appErrors.IsAppError(err)
		assert.Equal(t, []string{"This field is required."}, appErr.Fields["username"])
		assert.Equal(t, []string{"Enter a valid email address."}, appErr.Fields["email"])
		assert.NotContains(t, appErr.Fields, "password")
	})

	t.Run("Password rules are left to the server", func(t *testing.T) {
		req := &models.RegisterRequest{Username: "al", Email: "al@example.com", Password: "pw"}

		assert.NoError(t, utils.ValidateStruct(validate, req))
	})

	t.Run("Untagged fields are snake cased", func(t *testing.T) {
		form := &models.ProductForm{
			Name:               "Ring",
			Category:           1,
			Description:        "Gold",
			Price:              "100",
			DiscountPercentage: 120,
			UzumLink:           "https://uzum.uz/ring",
			Images:             map[string]string{"poster": "/tmp/a.jpg"},
		}

		err := utils.ValidateStruct(validate, form)
		require.Error(t, err)

		appErr, _ := appErrors.IsAppError(err)
		assert.Contains(t, appErr.Fields, "discount_percentage")

		var imageErr bool
		for field := range appErr.Fields {
			if strings.HasPrefix(field, "images") {
				imageErr = true
			}
		}
		assert.True(t, imageErr, "unknown image slot should be rejected: %v", appErr.Fields)
	})
}
