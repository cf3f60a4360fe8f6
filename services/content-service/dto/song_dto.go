package dto

type CreateSongRequest struct {
	Name      string   `json:"song_name" binding:"required,max=200"`
	Artist    string   `json:"artist" binding:"required,max=200"`
	Album     string   `json:"album" binding:"max=200"`
	Genres    []string `json:"genres" binding:"max=10,dive,max=50"`
	Thumbnail string   `json:"thumbnail" binding:"omitempty,url"`
}
