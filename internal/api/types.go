package api

import "github.com/pageza/recipebox/backend/internal/model"

// RecipeRequest is the body accepted by POST and PUT /recipes. ID is only
// honoured on PUT, where it must match the path.
type RecipeRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// Input returns the client-controlled fields of the request
func (r RecipeRequest) Input() model.RecipeInput {
	return model.RecipeInput{Name: r.Name, Ingredients: r.Ingredients}
}

// HealthResponse is returned by the liveness and readiness endpoints
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
