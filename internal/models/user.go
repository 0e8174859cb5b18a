package models

type User struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// UserRef is the user snapshot carried by a booking.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (p UserPatch) Apply(user *User) {
	if p.Name != nil {
		user.Name = *p.Name
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
}
