package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/media"
	"vidtube/internal/models"
	"vidtube/internal/reaction"
	"vidtube/internal/repositories"

	"go.uber.org/zap"
)

// fakeStore is an in-memory stand-in for the postgres schema.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*models.User
	channels map[int64]*models.Channel
	videos   map[int64]*models.Video
	comments map[int64]*models.Comment
	likes    map[int64]map[int64]bool
	dislikes map[int64]map[int64]bool
	views    map[int64]map[models.ViewerKey]bool
	failNext error

	// runs once after the next video read, outside the lock
	afterVideoRead func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]*models.User{},
		channels: map[int64]*models.Channel{},
		videos:   map[int64]*models.Video{},
		comments: map[int64]*models.Comment{},
		likes:    map[int64]map[int64]bool{},
		dislikes: map[int64]map[int64]bool{},
		views:    map[int64]map[models.ViewerKey]bool{},
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) fail() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *fakeStore) collection() *repositories.Collection {
	return &repositories.Collection{
		User:     &fakeUsers{s},
		Channel:  &fakeChannels{s},
		Video:    &fakeVideos{s},
		Reaction: &fakeReactions{s},
		Comment:  &fakeComments{s},
	}
}

func (s *fakeStore) publicUser(id int64, withSubscribers bool) *models.PublicUser {
	u := s.users[id]
	if u == nil {
		return nil
	}
	pu := &models.PublicUser{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
	if withSubscribers {
		n := 0
		for _, ch := range s.channels {
			if ch.OwnerID == id {
				n++
			}
		}
		pu.Subscribers = &n
	}
	return pu
}

func sortedKeys(m map[int64]bool) []int64 {
	out := []int64{}
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *fakeStore) hydrate(v *models.Video, withSubscribers bool) *models.Video {
	cp := *v
	cp.Likes = sortedKeys(s.likes[v.ID])
	cp.Dislikes = sortedKeys(s.dislikes[v.ID])
	cp.Views = len(s.views[v.ID])
	cp.Uploader = s.publicUser(v.UploaderID, withSubscribers)
	return &cp
}

// ===============================
// USERS
// ===============================

type fakeUsers struct{ s *fakeStore }

func (r *fakeUsers) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	user.Channels = []int64{}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.user(id), nil
}

func (r *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return r.s.user(u.ID), nil
		}
	}
	return nil, nil
}

func (s *fakeStore) user(id int64) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	cp.Channels = []int64{}
	for _, ch := range s.channels {
		if ch.OwnerID == id {
			cp.Channels = append(cp.Channels, ch.ID)
		}
	}
	return &cp
}

// ===============================
// CHANNELS
// ===============================

type fakeChannels struct{ s *fakeStore }

func (r *fakeChannels) Create(ctx context.Context, channel *models.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ch := range r.s.channels {
		if ch.OwnerID == channel.OwnerID {
			return repositories.ErrDuplicate
		}
	}
	channel.ID = r.s.id()
	cp := *channel
	r.s.channels[channel.ID] = &cp
	return nil
}

func (r *fakeChannels) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ch, ok := r.s.channels[id]; ok {
		cp := *ch
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeChannels) GetByOwner(ctx context.Context, ownerID int64) (*models.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	for _, ch := range r.s.channels {
		if ch.OwnerID == ownerID {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeChannels) Update(ctx context.Context, channel *models.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *channel
	cp.Videos = nil
	r.s.channels[channel.ID] = &cp
	return nil
}

// ===============================
// VIDEOS
// ===============================

type fakeVideos struct{ s *fakeStore }

func (r *fakeVideos) Create(ctx context.Context, video *models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	video.ID = r.s.id()
	video.CreatedAt = time.Now().Add(time.Duration(video.ID) * time.Millisecond)
	video.Likes, video.Dislikes = []int64{}, []int64{}
	cp := *video
	r.s.videos[video.ID] = &cp
	return nil
}

func (r *fakeVideos) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	v, err := r.getByID(id)

	r.s.mu.Lock()
	hook := r.s.afterVideoRead
	r.s.afterVideoRead = nil
	r.s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return v, err
}

func (r *fakeVideos) getByID(id int64) (*models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	if v, ok := r.s.videos[id]; ok {
		return r.s.hydrate(v, true), nil
	}
	return nil, nil
}

func (r *fakeVideos) List(ctx context.Context, filter models.VideoFilter) ([]*models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Video
	for _, v := range r.s.videos {
		if filter.Category != "" && v.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, r.s.hydrate(v, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*models.Video{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeVideos) ListByChannel(ctx context.Context, channelID int64) ([]*models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Video
	for _, v := range r.s.videos {
		if v.ChannelID == channelID {
			out = append(out, r.s.hydrate(v, false))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeVideos) Update(ctx context.Context, video *models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *video
	r.s.videos[video.ID] = &cp
	return nil
}

func (r *fakeVideos) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.videos, id)
	delete(r.s.likes, id)
	delete(r.s.dislikes, id)
	delete(r.s.views, id)
	for cid, c := range r.s.comments {
		if c.VideoID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

// ===============================
// REACTIONS
// ===============================

type fakeReactions struct{ s *fakeStore }

func set(m map[int64]map[int64]bool, video, user int64, present bool) {
	if m[video] == nil {
		m[video] = map[int64]bool{}
	}
	if present {
		m[video][user] = true
	} else {
		delete(m[video], user)
	}
}

func (r *fakeReactions) Toggle(ctx context.Context, videoID, userID int64, action reaction.Action) (*repositories.ReactionResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.videos[videoID]; !ok {
		return nil, nil
	}
	current := reaction.FromMembership(r.s.likes[videoID][userID], r.s.dislikes[videoID][userID])
	next := reaction.Next(current, action)
	set(r.s.likes, videoID, userID, next == reaction.Liked)
	set(r.s.dislikes, videoID, userID, next == reaction.Disliked)
	return &repositories.ReactionResult{
		State:  next,
		Counts: reaction.Counts{Likes: len(r.s.likes[videoID]), Dislikes: len(r.s.dislikes[videoID])},
	}, nil
}

func (r *fakeReactions) RecordView(ctx context.Context, videoID int64, viewer models.ViewerKey) (int, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.videos[videoID]; !ok {
		return 0, false, nil
	}
	if r.s.views[videoID] == nil {
		r.s.views[videoID] = map[models.ViewerKey]bool{}
	}
	r.s.views[videoID][viewer] = true
	return len(r.s.views[videoID]), true, nil
}

func (r *fakeReactions) Stats(ctx context.Context, videoID int64) (*models.VideoStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.videos[videoID]; !ok {
		return nil, nil
	}
	comments := 0
	for _, c := range r.s.comments {
		if c.VideoID == videoID {
			comments++
		}
	}
	return &models.VideoStats{
		VideoID:  videoID,
		Likes:    len(r.s.likes[videoID]),
		Dislikes: len(r.s.dislikes[videoID]),
		Views:    len(r.s.views[videoID]),
		Comments: comments,
	}, nil
}

// ===============================
// COMMENTS
// ===============================

type fakeComments struct{ s *fakeStore }

func (r *fakeComments) Create(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.id()
	comment.CreatedAt = time.Now()
	cp := *comment
	r.s.comments[comment.ID] = &cp
	return nil
}

func (r *fakeComments) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Author = r.s.publicUser(c.UserID, false)
	return &cp, nil
}

func (r *fakeComments) ListByVideo(ctx context.Context, videoID int64) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.s.comments {
		if c.VideoID == videoID {
			cp := *c
			cp.Author = r.s.publicUser(c.UserID, false)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeComments) Update(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *comment
	r.s.comments[comment.ID] = &cp
	return nil
}

func (r *fakeComments) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.comments, id)
	return nil
}

// ===============================
// COLLABORATORS
// ===============================

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.VideoStats
}

func (p *recordingPublisher) Publish(stats *models.VideoStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, stats)
}

func (p *recordingPublisher) last() *models.VideoStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (u *fakeUploader) Upload(ctx context.Context, file *media.File) (string, error) {
	u.calls++
	return u.url, u.err
}

func (u *fakeUploader) Provider() string { return "fake" }

var errBoom = errors.New("boom")

type testEnv struct {
	store     *fakeStore
	cache     cache.Cache
	publisher *recordingPublisher
	uploader  *fakeUploader
	services  *ServiceCollection
}

func testConfig() *config.Config {
	return &config.Config{
		Auth:  config.AuthConfig{JWTSecret: "test-secret-0123456789", JWTExpiry: time.Hour, BCryptCost: 4},
		Cache: config.CacheConfig{Provider: "memory", VideoTTL: time.Minute},
		Media: config.MediaConfig{MaxFileSize: 1024},
	}
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	c := cache.NewMemoryCache(cache.DefaultConfig(), zap.NewNop())
	pub := &recordingPublisher{}
	up := &fakeUploader{url: "https://cdn.example.com/clip.mp4"}

	sc, err := NewServiceCollection(Dependencies{
		Repositories: store.collection(),
		Cache:        c,
		Uploader:     up,
		Publisher:    pub,
		Logger:       zap.NewNop(),
	}, testConfig())
	if err != nil {
		panic(err)
	}

	return &testEnv{store: store, cache: c, publisher: pub, uploader: up, services: sc}
}

// seedUser registers and returns a user id.
func (e *testEnv) seedUser(name string) int64 {
	ctx := context.Background()
	err := e.services.AuthService.Register(ctx, &RegisterRequest{
		Username: name, Email: name + "@example.com", Password: "secret",
	})
	if err != nil {
		panic(err)
	}
	u, _ := e.services.Repositories.User.GetByEmail(ctx, name+"@example.com")
	return u.ID
}

// seedVideo creates a channel for owner (if needed) and a video.
func (e *testEnv) seedVideo(owner int64, title, category string) *models.Video {
	ctx := context.Background()
	if ch, _ := e.services.Repositories.Channel.GetByOwner(ctx, owner); ch == nil {
		if _, err := e.services.ChannelService.Create(ctx, owner, &CreateChannelRequest{ChannelName: "ch"}); err != nil {
			panic(err)
		}
	}
	v, err := e.services.VideoService.Create(ctx, owner, &CreateVideoRequest{
		Title: title, ThumbnailURL: "t.png", VideoURL: "v.mp4", Category: category,
	})
	if err != nil {
		panic(err)
	}
	return v
}
