package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRules(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		name, email, password := "Ann", "ann@x.com", "secret1"
		errs := RegisterRules().Apply(map[string]*string{
			"name":     &name,
			"email":    &email,
			"password": &password,
		})
		assert.Empty(t, errs)
	})

	t.Run("TrimsValuesInPlace", func(t *testing.T) {
		name, email, password := "  Ann  ", " ann@x.com ", " secret1 "
		errs := RegisterRules().Apply(map[string]*string{
			"name":     &name,
			"email":    &email,
			"password": &password,
		})
		assert.Empty(t, errs)
		assert.Equal(t, "Ann", name)
		assert.Equal(t, "ann@x.com", email)
		assert.Equal(t, "secret1", password)
	})

	t.Run("AccumulatesAcrossFields", func(t *testing.T) {
		name, email, password := "A", "not-an-email", "123"
		errs := RegisterRules().Apply(map[string]*string{
			"name":     &name,
			"email":    &email,
			"password": &password,
		})
		assert.Len(t, errs, 3)
		assert.Equal(t, "name", errs[0].Field)
		assert.Equal(t, "Name must be at least 2 characters", errs[0].Message)
		assert.Equal(t, "email", errs[1].Field)
		assert.Equal(t, "Enter a valid email", errs[1].Message)
		assert.Equal(t, "password", errs[2].Field)
		assert.Equal(t, "Password must be at least 6 characters", errs[2].Message)
	})

	t.Run("ShortCircuitsPerField", func(t *testing.T) {
		// Empty name fails the required check only, not the length check too.
		name, email, password := "", "ann@x.com", "secret1"
		errs := RegisterRules().Apply(map[string]*string{
			"name":     &name,
			"email":    &email,
			"password": &password,
		})
		assert.Len(t, errs, 1)
		assert.Equal(t, "Name is required", errs[0].Message)
	})

	t.Run("MissingFieldsTreatedAsEmpty", func(t *testing.T) {
		errs := RegisterRules().Apply(map[string]*string{})
		assert.Len(t, errs, 3)
		assert.Equal(t, "Name is required", errs[0].Message)
		assert.Equal(t, "Email is required", errs[1].Message)
		assert.Equal(t, "Password is required", errs[2].Message)
	})
}

func TestLoginRules(t *testing.T) {
	t.Run("PasswordOnlyNeedsPresence", func(t *testing.T) {
		email, password := "ann@x.com", "x"
		errs := LoginRules().Apply(map[string]*string{
			"email":    &email,
			"password": &password,
		})
		assert.Empty(t, errs)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		email, password := "nope", "secret1"
		errs := LoginRules().Apply(map[string]*string{
			"email":    &email,
			"password": &password,
		})
		assert.Len(t, errs, 1)
		assert.Equal(t, "Enter a valid email", errs[0].Message)
	})
}

func TestUpdateProfileRules(t *testing.T) {
	t.Run("AbsentOptionalFieldsSkipped", func(t *testing.T) {
		errs := UpdateProfileRules().Apply(map[string]*string{
			"name":  nil,
			"email": nil,
		})
		assert.Empty(t, errs)
	})

	t.Run("PresentFieldsStillValidated", func(t *testing.T) {
		name := "A"
		errs := UpdateProfileRules().Apply(map[string]*string{
			"name":  &name,
			"email": nil,
		})
		assert.Len(t, errs, 1)
		assert.Equal(t, "Name must be at least 2 characters", errs[0].Message)
	})
}

func TestChangePasswordRules(t *testing.T) {
	t.Run("ShortNewPassword", func(t *testing.T) {
		current, next := "secret1", "short"
		errs := ChangePasswordRules().Apply(map[string]*string{
			"currentPassword": &current,
			"newPassword":     &next,
		})
		assert.Len(t, errs, 1)
		assert.Equal(t, "newPassword", errs[0].Field)
		assert.Equal(t, "New password must be at least 6 characters", errs[0].Message)
	})
}

func TestIsEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.com"}
	invalid := []string{"", "plain", "a b@c.com", "Ann <ann@x.com>", "@x.com"}

	for _, v := range valid {
		assert.True(t, IsEmail(v), v)
	}
	for _, v := range invalid {
		assert.False(t, IsEmail(v), v)
	}
}
