package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glade/glade/internal/graphics"
	"github.com/glade/glade/internal/scene"
	"github.com/jackc/pgx/v5"
)

// SceneStateRepo stores scene.State rows keyed by scene name. Every save is
// also appended to scene_state_log in the same transaction.
type SceneStateRepo struct {
	db *DB
}

func NewSceneStateRepo(db *DB) *SceneStateRepo {
	return &SceneStateRepo{db: db}
}

var _ scene.StateStore = (*SceneStateRepo)(nil)

// LoadScene returns the saved state of a scene. ok is false when the scene
// was never saved.
func (r *SceneStateRepo) LoadScene(ctx context.Context, name string) (scene.State, bool, error) {
	var (
		st     scene.State
		period string
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT scene, cam_x, cam_y, cam_z, cam_yaw, cam_pitch, period, day_skybox, night_skybox, saved_at
		 FROM scene_state WHERE scene = $1`, name,
	).Scan(
		&st.Scene,
		&st.Camera.Position.X, &st.Camera.Position.Y, &st.Camera.Position.Z,
		&st.Camera.Yaw, &st.Camera.Pitch,
		&period, &st.DaySkybox, &st.NightSkybox, &st.SavedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return scene.State{}, false, nil
	}
	if err != nil {
		return scene.State{}, false, fmt.Errorf("load scene %s: %w", name, err)
	}
	if st.Period, err = scene.ParsePeriod(period); err != nil {
		return scene.State{}, false, fmt.Errorf("load scene %s: %w", name, err)
	}
	return st, true, nil
}

// SaveScene upserts the scene row and logs the save.
func (r *SceneStateRepo) SaveScene(ctx context.Context, st scene.State) error {
	if st.SavedAt.IsZero() {
		st.SavedAt = time.Now()
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save scene begin: %w", err)
	}
	defer tx.Rollback(ctx)

	p := st.Camera.Position
	if _, err := tx.Exec(ctx,
		`INSERT INTO scene_state (scene, cam_x, cam_y, cam_z, cam_yaw, cam_pitch, period, day_skybox, night_skybox, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (scene) DO UPDATE SET
		   cam_x = EXCLUDED.cam_x, cam_y = EXCLUDED.cam_y, cam_z = EXCLUDED.cam_z,
		   cam_yaw = EXCLUDED.cam_yaw, cam_pitch = EXCLUDED.cam_pitch,
		   period = EXCLUDED.period,
		   day_skybox = EXCLUDED.day_skybox, night_skybox = EXCLUDED.night_skybox,
		   saved_at = EXCLUDED.saved_at`,
		st.Scene, p.X, p.Y, p.Z, st.Camera.Yaw, st.Camera.Pitch,
		st.Period.String(), st.DaySkybox, st.NightSkybox, st.SavedAt,
	); err != nil {
		return fmt.Errorf("save scene upsert: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO scene_state_log (scene, period, cam_x, cam_y, cam_z, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		st.Scene, st.Period.String(), p.X, p.Y, p.Z, st.SavedAt,
	); err != nil {
		return fmt.Errorf("save scene log: %w", err)
	}

	return tx.Commit(ctx)
}

// SaveEntry is one row of the save history.
type SaveEntry struct {
	Period   scene.Period
	Position graphics.Vec3
	SavedAt  time.Time
}

// History returns the most recent saves of a scene, newest first.
func (r *SceneStateRepo) History(ctx context.Context, name string, limit int) ([]SaveEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT period, cam_x, cam_y, cam_z, saved_at FROM scene_state_log
		 WHERE scene = $1 ORDER BY saved_at DESC, id DESC LIMIT $2`, name, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SaveEntry
	for rows.Next() {
		var (
			e      SaveEntry
			period string
		)
		if err := rows.Scan(&period, &e.Position.X, &e.Position.Y, &e.Position.Z, &e.SavedAt); err != nil {
			return nil, err
		}
		if e.Period, err = scene.ParsePeriod(period); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteScene removes a scene's saved state and its history.
func (r *SceneStateRepo) DeleteScene(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx,
		`WITH gone AS (DELETE FROM scene_state_log WHERE scene = $1)
		 DELETE FROM scene_state WHERE scene = $1`, name,
	)
	return err
}
