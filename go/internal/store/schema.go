package store

// schema is applied in order at startup. Statements are idempotent so
// restarts against an existing database are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS question_cache (
		id UUID PRIMARY KEY,
		age_band TEXT NOT NULL,
		prompt TEXT NOT NULL,
		choices JSONB NOT NULL,
		correct_index INT NOT NULL,
		explanation TEXT,
		dedup_key TEXT NOT NULL,
		quality_score INT NOT NULL DEFAULT 70,
		source TEXT NOT NULL DEFAULT 'manual',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT question_cache_band_dedup_key UNIQUE (age_band, dedup_key)
	)`,

	`CREATE INDEX IF NOT EXISTS question_cache_band_quality_idx
		ON question_cache (age_band, quality_score DESC)`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		age_band TEXT NOT NULL,
		round_number INT NOT NULL DEFAULT 1,
		current_question_id UUID REFERENCES question_cache(id),
		round_ends_at TIMESTAMPTZ,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS rooms_due_idx
		ON rooms (round_ends_at) WHERE status = 'active'`,

	`CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY,
		room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		device_id TEXT NOT NULL,
		team_name TEXT NOT NULL,
		team_color TEXT NOT NULL,
		score INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT players_room_device_key UNIQUE (room_id, device_id)
	)`,

	`CREATE TABLE IF NOT EXISTS room_questions (
		room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		question_id UUID NOT NULL REFERENCES question_cache(id),
		round_number INT NOT NULL,
		used_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (room_id, question_id)
	)`,

	`CREATE TABLE IF NOT EXISTS answers (
		id UUID PRIMARY KEY,
		room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		round_number INT NOT NULL,
		question_id UUID NOT NULL REFERENCES question_cache(id),
		answer_index INT NOT NULL,
		is_correct BOOLEAN,
		points INT NOT NULL DEFAULT 0,
		answered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT answers_room_player_round_key UNIQUE (room_id, player_id, round_number)
	)`,

	`CREATE TABLE IF NOT EXISTS question_feedback (
		id UUID PRIMARY KEY,
		room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		question_id UUID NOT NULL REFERENCES question_cache(id),
		feedback_kind TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS room_outbox (
		id UUID PRIMARY KEY,
		room_id UUID NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		sent_at TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS room_outbox_unsent_idx
		ON room_outbox (created_at) WHERE sent_at IS NULL`,

	`CREATE OR REPLACE FUNCTION notify_room_outbox() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('room_outbox_events', NEW.id::text);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS room_outbox_notify ON room_outbox`,

	`CREATE TRIGGER room_outbox_notify
		AFTER INSERT ON room_outbox
		FOR EACH ROW EXECUTE FUNCTION notify_room_outbox()`,
}
