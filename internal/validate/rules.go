package validate

// Rule sets, one per endpoint.

func RegisterRules() RuleSet {
	return RuleSet{
		{
			Field: "name",
			Checks: []Check{
				{Fn: NotEmpty, Message: "Name is required"},
				{Fn: MinLen(2), Message: "Name must be at least 2 characters"},
			},
		},
		{
			Field: "email",
			Checks: []Check{
				{Fn: NotEmpty, Message: "Email is required"},
				{Fn: IsEmail, Message: "Enter a valid email"},
			},
		},
		{
			Field: "password",
			Checks: []Check{
				{Fn: NotEmpty, Message: "Password is required"},
				{Fn: MinLen(6), Message: "Password must be at least 6 characters"},
			},
		},
	}
}

func LoginRules() RuleSet {
	return RuleSet{
		{
			Field: "email",
			Checks: []Check{
				{Fn: NotEmpty, Message: "Email is required"},
				{Fn: IsEmail, Message: "Enter a valid email"},
			},
		},
		{
			Field: "password",
			Checks: []Check{
				{Fn: NotEmpty, Message: "Password is required"},
			},
		},
	}
}

func UpdateProfileRules() RuleSet {
	return RuleSet{
		{
			Field:    "name",
			Optional: true,
			Checks: []Check{
				{Fn: MinLen(2), Message: "Name must be at least 2 characters"},
			},
		},
		{
			Field:    "email",
			Optional: true,
			Checks: []Check{
				{Fn: IsEmail, Message: "Enter a valid email"},
			},
		},
	}
}

func ChangePasswordRules() RuleSet {
	return RuleSet{
		{
			Field: "currentPassword",
			Checks: []Check{
				{Fn: NotEmpty, Message: "Current password is required"},
			},
		},
		{
			Field: "newPassword",
			Checks: []Check{
				{Fn: NotEmpty, Message: "New password is required"},
				{Fn: MinLen(6), Message: "New password must be at least 6 characters"},
			},
		},
	}
}
