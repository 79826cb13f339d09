package model

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Exp      int    `json:"exp"`
	Gold     int    `json:"gold"`
	JobClass string `json:"job_class"`
	Avatar   string `json:"avatar"`
}
