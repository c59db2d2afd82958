package models

// User is a record in the "users" collection of the document store.
//
// Password holds the bcrypt hash and is serialized on purpose: the public
// API has always returned the stored record verbatim on registration and
// login, and existing clients depend on the shape.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Avatar    string `json:"avatar"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds
}
