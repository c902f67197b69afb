package domain

type User struct {
	Id           string
	Username     string
	PasswordHash string
	Coins        int64
}
