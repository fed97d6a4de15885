package store

// Request keys. Parameterized resources get one key per parameter.
const (
	KeyLogin         = "auth/login"
	KeyRegister      = "auth/register"
	KeyLogout        = "auth/logout"
	KeyProfile       = "auth/profile"
	KeyMedia         = "media"
	KeyGenres        = "genres"
	KeyLists         = "lists"
	KeyCreateList    = "lists/create"
	KeyPersonalized  = "recommendations/personalized"
	KeyTrending      = "recommendations/trending"
	KeyPreferences   = "recommendations/preferences"
	KeyNotifications = "notifications"
	KeyReadAll       = "notifications/read-all"
)

func MediaDetailKey(id string) string       { return "media/" + id }
func ListKey(id string) string              { return "lists/" + id }
func ListEditKey(id string) string          { return "lists/" + id + "/edit" }
func ListItemsKey(listID string) string     { return "lists/" + listID + "/items" }
func ListItemKey(itemID string) string      { return "lists/items/" + itemID }
func ReorderKey(listID string) string       { return "lists/" + listID + "/reorder" }
func RatingKey(mediaID string) string       { return "ratings/" + mediaID }
func ReviewKey(mediaID string) string       { return "reviews/" + mediaID }
func MediaReviewsKey(mediaID string) string { return "reviews/media/" + mediaID }
func ReviewLikeKey(reviewID string) string  { return "reviews/" + reviewID + "/like" }
func SimilarKey(mediaID string) string      { return "recommendations/similar/" + mediaID }
func UserKey(id string) string              { return "users/" + id }
func FollowersKey(id string) string         { return "users/" + id + "/followers" }
func FollowingKey(id string) string         { return "users/" + id + "/following" }
func FollowKey(id string) string            { return "users/" + id + "/follow" }
func NotificationReadKey(id string) string  { return "notifications/" + id + "/read" }
