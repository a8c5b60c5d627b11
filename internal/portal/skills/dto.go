package skills

type SaveSkillRequest struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name" binding:"required"`
	Dept     string `json:"dept"`
	Skills   string `json:"skills"`
	Studying string `json:"studying"`
	Status   string `json:"status"` // 空なら 募集中
	SlackID  string `json:"slackId"`
	PhotoURL string `json:"photoUrl"`
	Comment  string `json:"comment"`
	MBTI     string `json:"mbti"`
}

type UpdateStatusRequest struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status" binding:"required"`
}

type SkillResponse struct {
	RowNumber int    `json:"rowNumber"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dept      string `json:"dept"`
	Skills    string `json:"skills"`
	Studying  string `json:"studying"`
	Status    string `json:"status"`
	SlackID   string `json:"slackId"`
	PhotoURL  string `json:"photoUrl"`
	Comment   string `json:"comment"`
	MBTI      string `json:"mbti"`
}
