package entity

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Gravatar string `json:"gravatar"`
}
