// package services implements typed clients for the media API's resources.
package services

// API groups the per-resource services that share one [Client].
type API struct {
	Auth            *AuthService
	Media           *MediaService
	Genres          *GenreService
	Lists           *ListService
	Ratings         *RatingService
	Reviews         *ReviewService
	Recommendations *RecommendationService
	Users           *UserService
	Notifications   *NotificationService
}

// NewAPI wires every resource service to c.
func NewAPI(c *Client) *API {
	return &API{
		Auth:            &AuthService{client: c},
		Media:           &MediaService{client: c},
		Genres:          &GenreService{client: c},
		Lists:           &ListService{client: c},
		Ratings:         &RatingService{client: c},
		Reviews:         &ReviewService{client: c},
		Recommendations: &RecommendationService{client: c},
		Users:           &UserService{client: c},
		Notifications:   &NotificationService{client: c},
	}
}
