package storage

const schema = `
-- The 'decks' table names each deck stored in the database.
CREATE TABLE IF NOT EXISTS decks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    created_at DATETIME
);

-- The 'records' table holds one row per card, in deck order.
CREATE TABLE IF NOT EXISTS records (
    deck_id INTEGER NOT NULL,
    row_index INTEGER NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    date_created TEXT NOT NULL,
    cur_interval REAL NOT NULL,
    ease_factor REAL NOT NULL,
    times_reviewed INTEGER NOT NULL DEFAULT 0,
    times_failed INTEGER NOT NULL DEFAULT 0,
    times_correct INTEGER NOT NULL DEFAULT 0,

    PRIMARY KEY(deck_id, row_index),
    FOREIGN KEY(deck_id) REFERENCES decks(id)
);
`
