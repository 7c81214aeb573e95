package models

// Session is the authenticated user record, the only state the client persists.
type Session struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the body returned by POST /auth/login.
type AuthResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// Session converts the login response into the persisted session shape.
func (a AuthResponse) Session() Session {
	return Session{ID: a.UserID, Name: a.Username, Email: a.Email, Token: a.Token}
}

// WithUser returns a copy of s carrying u's profile fields. The token is kept.
func (s Session) WithUser(u User) Session {
	s.ID = u.ID
	s.Name = u.Name
	s.Email = u.Email
	return s
}
