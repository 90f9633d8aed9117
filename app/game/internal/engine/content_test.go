package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/rng"
)

func ownedLookup(insts ...*model.CharacterInstance) func(string) *model.CharacterInstance {
	m := make(map[string]*model.CharacterInstance, len(insts))
	for _, i := range insts {
		m[i.InstanceID] = i
	}
	return func(id string) *model.CharacterInstance { return m[id] }
}

func TestStartContent(t *testing.T) {
	env := newEnv(t, rng.NewSeeded(1))
	lookup := ownedLookup(
		&model.CharacterInstance{InstanceID: "a", DefinitionID: "char_001", Level: 5},
		&model.CharacterInstance{InstanceID: "b", DefinitionID: "char_002", Level: 1},
	)

	job, err := StartContent(env, "p1", StartRequest{Title: "  First vlog ", Genre: "gaming", CharacterIDs: []string{"a", "b"}}, nil, lookup)
	require.NoError(t, err)
	assert.Equal(t, "First vlog", job.Title)
	assert.Equal(t, model.GenreGaming, job.Genre)
	assert.Equal(t, model.Stats{Filming: 42, Editing: 40, Planning: 20, Design: 20}, job.Scores)
	assert.Equal(t, int64(122), job.TotalQuality)
	assert.Equal(t, int64(600), job.ProductionSeconds)
	assert.Equal(t, model.ContentProducing, job.Status)
	assert.Equal(t, testNow, job.StartedAt)
}

func TestStartContentRejects(t *testing.T) {
	env := newEnv(t, rng.NewSeeded(1))
	lookup := ownedLookup(&model.CharacterInstance{InstanceID: "a", DefinitionID: "char_001", Level: 1})
	producing := &model.ContentJob{ID: "busy", Status: model.ContentProducing}

	tests := []struct {
		name      string
		req       StartRequest
		producing *model.ContentJob
		kind      gameerr.Kind
	}{
		{"blank title", StartRequest{Title: "  ", Genre: "Vlog", CharacterIDs: []string{"a"}}, nil, gameerr.KindValidation},
		{"unknown genre", StartRequest{Title: "x", Genre: "Horror", CharacterIDs: []string{"a"}}, nil, gameerr.KindValidation},
		{"no characters", StartRequest{Title: "x", Genre: "Vlog"}, nil, gameerr.KindValidation},
		{"too many", StartRequest{Title: "x", Genre: "Vlog", CharacterIDs: []string{"a", "b", "c", "d", "e"}}, nil, gameerr.KindValidation},
		{"duplicate", StartRequest{Title: "x", Genre: "Vlog", CharacterIDs: []string{"a", "a"}}, nil, gameerr.KindValidation},
		{"already producing", StartRequest{Title: "x", Genre: "Vlog", CharacterIDs: []string{"a"}}, producing, gameerr.KindStateConflict},
		{"validation before conflict", StartRequest{Title: "", Genre: "Vlog", CharacterIDs: []string{"a"}}, producing, gameerr.KindValidation},
		{"not owned", StartRequest{Title: "x", Genre: "Vlog", CharacterIDs: []string{"a", "zzz"}}, nil, gameerr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := StartContent(env, "p1", tt.req, tt.producing, lookup)
			assert.Equal(t, tt.kind, gameerr.KindOf(err))
		})
	}
}

func TestCompleteContent(t *testing.T) {
	job := &model.ContentJob{ID: "j", Status: model.ContentProducing, ProductionSeconds: 600, StartedAt: testNow}

	err := CompleteContent(job, testNow.Add(599*time.Second))
	ge, ok := gameerr.As(err)
	require.True(t, ok)
	assert.Equal(t, gameerr.KindStillInProgress, ge.Kind)
	assert.Equal(t, int64(1), ge.RemainingSeconds)

	err = CompleteContent(job, testNow.Add(599*time.Second+500*time.Millisecond))
	ge, _ = gameerr.As(err)
	assert.Equal(t, int64(1), ge.RemainingSeconds)

	err = CompleteContent(job, testNow.Add(10*time.Second))
	ge, _ = gameerr.As(err)
	assert.Equal(t, int64(590), ge.RemainingSeconds)
	assert.Equal(t, model.ContentProducing, job.Status)

	done := testNow.Add(601 * time.Second)
	require.NoError(t, CompleteContent(job, done))
	assert.Equal(t, model.ContentCompleted, job.Status)
	assert.Equal(t, done, *job.CompletedAt)

	assert.True(t, gameerr.Is(CompleteContent(job, done), gameerr.KindStateConflict))
	assert.True(t, gameerr.Is(CompleteContent(nil, done), gameerr.KindNotFound))
}

func TestUploadContent(t *testing.T) {
	// IntN 依次映射：views 区间 21 个取第 0 个 -> 10；likes 13 个取 6 -> 9；subs 151 个取 75 -> 125
	env := newEnv(t, &rng.Fixed{Values: []float64{0.0, 0.5, 0.5}})
	env.Now = testNow.Add(time.Hour)
	p := &model.Player{ID: "p1", Gold: 10, Subscribers: 100, TotalViews: 0}
	job := &model.ContentJob{ID: "j", Status: model.ContentCompleted, TotalQuality: 122}

	res, err := UploadContent(env, p, job)
	require.NoError(t, err)

	views := int64(122*10 + 100/10)
	assert.Equal(t, views, res.Views)
	assert.Equal(t, views*9/100, res.Likes)
	assert.Equal(t, views/10, res.Revenue)
	assert.Equal(t, views/125, res.NewSubscribers)
	assert.Equal(t, 100+views/125, res.TotalSubscribers)

	assert.Equal(t, 10+views/10, p.Gold)
	assert.Equal(t, views, p.TotalViews)
	assert.Equal(t, p.Subscribers+p.TotalViews/100, p.ChannelPower)
	assert.Equal(t, model.ContentUploaded, job.Status)
	assert.Equal(t, env.Now, *job.UploadedAt)
	assert.Equal(t, views, job.Views)

	_, err = UploadContent(env, p, job)
	assert.True(t, gameerr.Is(err, gameerr.KindStateConflict))
	_, err = UploadContent(env, p, &model.ContentJob{Status: model.ContentProducing})
	assert.True(t, gameerr.Is(err, gameerr.KindStateConflict))
	_, err = UploadContent(env, p, nil)
	assert.True(t, gameerr.Is(err, gameerr.KindNotFound))
}

func TestDescribeProducing(t *testing.T) {
	job := &model.ContentJob{ProductionSeconds: 300, StartedAt: testNow}
	assert.Equal(t, int64(300), DescribeProducing(job, testNow).RemainingSeconds)
	assert.Equal(t, int64(0), DescribeProducing(job, testNow.Add(time.Hour)).RemainingSeconds)
	assert.Nil(t, DescribeProducing(nil, testNow))
}
