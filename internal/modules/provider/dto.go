package provider

type OnboardRequest struct {
	Category     string   `json:"category" binding:"required"`
	Location     string   `json:"location" binding:"required"`
	Bio          string   `json:"bio"`
	ServiceAreas []string `json:"service_areas"`
	Skills       []string `json:"skills"`
}

type UpdateProfileRequest struct {
	Category     *string   `json:"category"`
	Location     *string   `json:"location"`
	Bio          *string   `json:"bio"`
	ServiceAreas *[]string `json:"service_areas"`
	Skills       *[]string `json:"skills"`
}

type VerifyRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}
