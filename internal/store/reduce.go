package store

import (
	"fmt"
	"slices"

	"github.com/desertthunder/mrx/internal/models"
)

// Reduce returns the state after a. It never mutates s.
//
// Settled actions are fenced by sequence number: when a newer request for the
// same key has been issued, replace-style payloads are dropped entirely and
// incremental payloads are merged without touching the lifecycle.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Pending:
		if a.Seq < s.Requests[a.Key].Seq {
			return s
		}
		return s.withRequest(a.Key, Lifecycle{Status: StatusLoading, Seq: a.Seq})
	case Rejected:
		if s.stale(a.Key, a.Seq) {
			return s
		}
		return s.withRequest(a.Key, Lifecycle{Status: StatusFailed, Err: a.Err, Seq: s.Requests[a.Key].Seq})
	}

	st, ok := a.(settler)
	if !ok {
		return apply(s, a)
	}

	settle := st.settle()
	if settle.Key == "" {
		return apply(s, a)
	}
	if s.stale(settle.Key, settle.Seq) {
		if incremental(a) {
			return apply(s, a)
		}
		return s
	}
	s = apply(s, a)

	done := Lifecycle{Status: StatusSucceeded, Seq: s.Requests[settle.Key].Seq}
	if rb, ok := a.(ReorderRolledBack); ok {
		done.Status, done.Err = StatusFailed, rb.Err
	}
	return s.withRequest(settle.Key, done)
}

// stale reports whether seq is not the latest issued for key. Zero is never stale.
func (s State) stale(key string, seq uint64) bool {
	return seq != 0 && seq != s.Requests[key].Seq
}

// incremental actions adjust counters relative to the current state, so they
// are applied even when a newer request for their key is in flight.
func incremental(a Action) bool {
	switch a.(type) {
	case ListItemAdded, ListItemRemoved, ReviewLiked, FollowChanged, NotificationRead:
		return true
	default:
		return false
	}
}

func apply(s State, a Action) State {
	switch a := a.(type) {
	case LoggedIn:
		user := a.User
		s.Auth = AuthState{IsAuthenticated: true, User: &user, AccessToken: a.AccessToken, RefreshToken: a.RefreshToken}
	case TokensRefreshed:
		s.Auth.AccessToken, s.Auth.RefreshToken = a.AccessToken, a.RefreshToken
	case LoggedOut:
		s.Auth = AuthState{}
	case UserUpdated:
		user := a.User
		s.Auth.User = &user
	case Hydrated:
		s.Auth = AuthState{}
		if a.Session.Valid() {
			s.Auth = AuthState{
				IsAuthenticated: true,
				User:            a.Session.User,
				AccessToken:     a.Session.AccessToken,
				RefreshToken:    a.Session.RefreshToken,
			}
		}

	case MediaFetched:
		s.Media.Items = a.Items
		s.Media.Pagination = a.Pagination
		if len(s.Genres.Items) == 0 {
			s.Media.Genres = deriveGenres(a.Items)
		}
	case MediaDetailFetched:
		s.Media.Details = with(s.Media.Details, a.Item.ID, a.Item)
	case FiltersSet:
		s.Media.Filters = mergeFilters(s.Media.Filters, a.Filters)
	case FiltersCleared:
		s.Media.Filters = models.DefaultMediaFilters()
	case PageSet:
		s.Media.Filters.Page = max(a.Page, 1)

	case GenresFetched:
		s.Genres = GenresState{Items: a.Items, Pagination: a.Pagination}

	case ListsFetched:
		s.Lists.Items = a.Items
		s.Lists.Pagination = a.Pagination
	case ListFetched:
		list := a.List
		list.Items = slices.Clone(list.Items)
		s.Lists.Current = &list
	case ListCreated:
		s.Lists.Items = append(slices.Clone(s.Lists.Items), a.List)
	case ListUpdated:
		s.Lists = updateList(s.Lists, a.List)
	case ListDeleted:
		s.Lists.Items = slices.DeleteFunc(slices.Clone(s.Lists.Items), func(l models.MediaList) bool { return l.ID == a.ID })
		if s.Lists.Current != nil && s.Lists.Current.ID == a.ID {
			s.Lists.Current = nil
		}
	case ListItemAdded:
		s.Lists = addListItem(s.Lists, a.Item)
	case ListItemRemoved:
		s.Lists = removeListItem(s.Lists, a.ListID, a.ItemID)
	case ListItemUpdated:
		s.Lists = patchListItem(s.Lists, a.Item)
	case ListReordered:
		s.Lists = replaceItems(s.Lists, a.ListID, renumber(a.Items))
	case ReorderConfirmed:
		if cur := s.CurrentList(a.ListID); cur != nil {
			s.Lists = replaceItems(s.Lists, a.ListID, Reconcile(cur.Items, a.IDs))
		}
	case ReorderRolledBack:
		// Items added or removed while the reorder was in flight are already on the server.
		if cur := s.CurrentList(a.ListID); cur != nil {
			s.Lists = replaceItems(s.Lists, a.ListID, Reconcile(cur.Items, itemIDs(a.Items)))
		}

	case RatingFetched:
		s.Ratings.UserRatings = with(s.Ratings.UserRatings, a.MediaID, a.Rating)
	case RatingSubmitted:
		rating := a.Rating
		s.Ratings.UserRatings = with(s.Ratings.UserRatings, rating.MediaID, &rating)
	case RatingRemoved:
		s.Ratings.UserRatings = with(s.Ratings.UserRatings, a.MediaID, (*models.Rating)(nil))
	case ReviewFetched:
		s.Ratings.UserReviews = with(s.Ratings.UserReviews, a.MediaID, a.Review)
	case ReviewSubmitted:
		s.Ratings = submitReview(s.Ratings, a.Review)
	case ReviewDeleted:
		s.Ratings.UserReviews = with(s.Ratings.UserReviews, a.MediaID, (*models.Review)(nil))
		if reviews, ok := s.Ratings.MediaReviews[a.MediaID]; ok {
			kept := slices.DeleteFunc(slices.Clone(reviews), func(r models.Review) bool { return r.ID == a.ReviewID })
			s.Ratings.MediaReviews = with(s.Ratings.MediaReviews, a.MediaID, kept)
		}
	case MediaReviewsFetched:
		s.Ratings.MediaReviews = with(s.Ratings.MediaReviews, a.MediaID, a.Items)
		s.Ratings.ReviewPagination = with(s.Ratings.ReviewPagination, a.MediaID, a.Pagination)
	case ReviewLiked:
		s.Ratings = likeReview(s.Ratings, a.ReviewID, a.Liked)

	case PersonalizedFetched:
		s.Recommendations.Personalized = a.Items
	case TrendingFetched:
		s.Recommendations.Trending = a.Items
	case SimilarFetched:
		s.Recommendations.Similar = with(s.Recommendations.Similar, a.MediaID, a.Items)
	case PreferencesUpdated:
		prefs := a.Preferences
		s.Recommendations.Preferences = &prefs

	case NotificationsFetched:
		s.Notifications.Items = a.Items
		s.Notifications.UnreadCount = max(a.UnreadCount, 0)
		s.Notifications.Pagination = a.Pagination
	case NotificationReceived:
		s.Notifications = receiveNotification(s.Notifications, a.Notification)
	case NotificationRead:
		s.Notifications = readNotification(s.Notifications, a.ID)
	case AllNotificationsRead:
		items := slices.Clone(s.Notifications.Items)
		for i := range items {
			items[i].IsRead = true
		}
		s.Notifications.Items = items
		s.Notifications.UnreadCount = 0
	case UnreadCountSet:
		s.Notifications.UnreadCount = max(a.Count, 0)
	case ConnectionChanged:
		s.Notifications.Connection = a.State

	case ProfileFetched:
		profile := a.Profile
		s.Users.Profile = &profile
	case FollowersFetched:
		s.Users.Followers = a.Items
	case FollowingFetched:
		s.Users.Following = a.Items
	case FollowChanged:
		s.Users = follow(s.Users, a.UserID, a.Following)

	default:
		panic(fmt.Sprintf("store: unhandled action %T", a))
	}
	return s
}

func deriveGenres(items []models.MediaItem) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range items {
		for _, g := range item.Genres {
			if _, ok := seen[g]; ok || g == "" {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return out
}

func mergeFilters(cur, patch models.MediaFilters) models.MediaFilters {
	if patch.Limit > 0 {
		cur.Limit = patch.Limit
	}
	if patch.Type != "" {
		cur.Type = patch.Type
	}
	if patch.Genre != "" {
		cur.Genre = patch.Genre
	}
	if patch.Search != "" {
		cur.Search = patch.Search
	}
	if patch.SortBy != "" {
		cur.SortBy = patch.SortBy
	}
	if patch.SortOrder != "" {
		cur.SortOrder = patch.SortOrder
	}
	cur.Page = 1
	return cur
}

// withCurrent returns a copy of the current detail, or nil when listID is not loaded.
func withCurrent(ls ListsState, listID string) *models.ListDetails {
	if ls.Current == nil || ls.Current.ID != listID {
		return nil
	}
	cur := *ls.Current
	return &cur
}

// setSummaryCount applies count to the summary of listID.
func setSummaryCount(items []models.MediaList, listID string, count func(int) int) []models.MediaList {
	i := slices.IndexFunc(items, func(l models.MediaList) bool { return l.ID == listID })
	if i < 0 {
		return items
	}
	out := slices.Clone(items)
	out[i].ItemCount = max(count(out[i].ItemCount), 0)
	return out
}

func updateList(ls ListsState, list models.MediaList) ListsState {
	if i := slices.IndexFunc(ls.Items, func(l models.MediaList) bool { return l.ID == list.ID }); i >= 0 {
		ls.Items = slices.Clone(ls.Items)
		ls.Items[i] = list
	}
	if cur := withCurrent(ls, list.ID); cur != nil {
		cur.MediaList = list
		cur.ItemCount = len(cur.Items)
		ls.Current = cur
		ls.Items = setSummaryCount(ls.Items, list.ID, func(int) int { return len(cur.Items) })
	}
	return ls
}

// addListItem appends item to the loaded detail and keeps both counters in step.
func addListItem(ls ListsState, item models.ListItem) ListsState {
	cur := withCurrent(ls, item.ListID)
	if cur == nil {
		ls.Items = setSummaryCount(ls.Items, item.ListID, func(n int) int { return n + 1 })
		return ls
	}
	if slices.ContainsFunc(cur.Items, func(i models.ListItem) bool { return i.ID == item.ID }) {
		return ls
	}
	cur.Items = append(slices.Clone(cur.Items), item)
	cur.ItemCount = len(cur.Items)
	ls.Current = cur
	ls.Items = setSummaryCount(ls.Items, item.ListID, func(int) int { return len(cur.Items) })
	return ls
}

func removeListItem(ls ListsState, listID, itemID string) ListsState {
	cur := withCurrent(ls, listID)
	if cur == nil {
		ls.Items = setSummaryCount(ls.Items, listID, func(n int) int { return n - 1 })
		return ls
	}
	if !slices.ContainsFunc(cur.Items, func(i models.ListItem) bool { return i.ID == itemID }) {
		return ls
	}
	cur.Items = slices.DeleteFunc(slices.Clone(cur.Items), func(i models.ListItem) bool { return i.ID == itemID })
	cur.ItemCount = len(cur.Items)
	ls.Current = cur
	ls.Items = setSummaryCount(ls.Items, listID, func(int) int { return len(cur.Items) })
	return ls
}

func patchListItem(ls ListsState, item models.ListItem) ListsState {
	if ls.Current == nil {
		return ls
	}
	i := slices.IndexFunc(ls.Current.Items, func(it models.ListItem) bool { return it.ID == item.ID })
	if i < 0 {
		return ls
	}
	cur := *ls.Current
	cur.Items = slices.Clone(cur.Items)
	patched := cur.Items[i]
	patched.Notes = item.Notes
	cur.Items[i] = patched
	ls.Current = &cur
	return ls
}

func replaceItems(ls ListsState, listID string, items []models.ListItem) ListsState {
	cur := withCurrent(ls, listID)
	if cur == nil {
		return ls
	}
	cur.Items = items
	cur.ItemCount = len(items)
	ls.Current = cur
	ls.Items = setSummaryCount(ls.Items, listID, func(int) int { return len(items) })
	return ls
}

// renumber returns a copy of items with Order set to each position.
func renumber(items []models.ListItem) []models.ListItem {
	out := slices.Clone(items)
	for i := range out {
		out[i].Order = i
	}
	return out
}

// Reconcile maps ids onto the matching items with Order set to the id's
// position. Ids without a matching item are dropped; items not named in ids
// follow in their current order.
func Reconcile(items []models.ListItem, ids []string) []models.ListItem {
	byID := make(map[string]models.ListItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	out := make([]models.ListItem, 0, len(items))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			continue
		}
		delete(byID, id)
		item.Order = len(out)
		out = append(out, item)
	}
	for _, item := range items {
		if _, ok := byID[item.ID]; !ok {
			continue
		}
		item.Order = len(out)
		out = append(out, item)
	}
	return out
}

func itemIDs(items []models.ListItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// Move returns a copy of items with the element at from moved to to.
func Move(items []models.ListItem, from, to int) ([]models.ListItem, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return nil, fmt.Errorf("move %d to %d out of range for %d items", from, to, len(items))
	}
	out := slices.Clone(items)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, item)
	return renumber(out), nil
}

func submitReview(rs RatingsState, review models.Review) RatingsState {
	r := review
	rs.UserReviews = with(rs.UserReviews, review.MediaID, &r)

	reviews := slices.Clone(rs.MediaReviews[review.MediaID])
	if i := slices.IndexFunc(reviews, func(x models.Review) bool { return x.UserID == review.UserID }); i >= 0 {
		reviews[i] = review
	} else {
		reviews = slices.Insert(reviews, 0, review)
	}
	rs.MediaReviews = with(rs.MediaReviews, review.MediaID, reviews)
	return rs
}

func likeReview(rs RatingsState, reviewID string, liked bool) RatingsState {
	toggle := func(r models.Review) models.Review {
		if r.IsLiked == liked {
			return r
		}
		r.IsLiked = liked
		if liked {
			r.LikesCount++
		} else {
			r.LikesCount = max(r.LikesCount-1, 0)
		}
		return r
	}

	for mediaID, r := range rs.UserReviews {
		if r != nil && r.ID == reviewID {
			updated := toggle(*r)
			rs.UserReviews = with(rs.UserReviews, mediaID, &updated)
		}
	}
	for mediaID, reviews := range rs.MediaReviews {
		i := slices.IndexFunc(reviews, func(r models.Review) bool { return r.ID == reviewID })
		if i < 0 {
			continue
		}
		updated := slices.Clone(reviews)
		updated[i] = toggle(updated[i])
		rs.MediaReviews = with(rs.MediaReviews, mediaID, updated)
	}
	return rs
}

func receiveNotification(ns NotificationsState, n models.Notification) NotificationsState {
	if slices.ContainsFunc(ns.Items, func(x models.Notification) bool { return x.ID == n.ID }) {
		return ns
	}
	ns.Items = slices.Insert(slices.Clone(ns.Items), 0, n)
	if !n.IsRead {
		ns.UnreadCount++
	}
	return ns
}

func readNotification(ns NotificationsState, id string) NotificationsState {
	i := slices.IndexFunc(ns.Items, func(n models.Notification) bool { return n.ID == id })
	if i < 0 || ns.Items[i].IsRead {
		return ns
	}
	ns.Items = slices.Clone(ns.Items)
	ns.Items[i].IsRead = true
	ns.UnreadCount = max(ns.UnreadCount-1, 0)
	return ns
}

// follow updates the profile and the follower and following entries of userID.
func follow(us UsersState, userID string, following bool) UsersState {
	if p := us.Profile; p != nil && p.ID == userID && p.IsFollowing != following {
		profile := *p
		profile.IsFollowing = following
		if following {
			profile.Stats.FollowersCount++
		} else {
			profile.Stats.FollowersCount = max(profile.Stats.FollowersCount-1, 0)
		}
		us.Profile = &profile
	}
	us.Followers = setFollowing(us.Followers, userID, following)
	us.Following = setFollowing(us.Following, userID, following)
	return us
}

func setFollowing(items []models.UserItem, userID string, following bool) []models.UserItem {
	i := slices.IndexFunc(items, func(u models.UserItem) bool { return u.ID == userID })
	if i < 0 || items[i].IsFollowing == following {
		return items
	}
	out := slices.Clone(items)
	out[i].IsFollowing = following
	return out
}
