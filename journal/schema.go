package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	units REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	realized_pl REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	equity REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS kpi (
	fast INTEGER NOT NULL,
	slow INTEGER NOT NULL,
	end_value REAL NOT NULL,
	return_ave REAL,
	max_draw_downs REAL,
	win_trades INTEGER NOT NULL,
	loss_trades INTEGER NOT NULL,
	total_trades INTEGER NOT NULL,
	win_ratio REAL,
	ave_win_value REAL,
	ave_loss_value REAL,
	ave_win_loss_ratio REAL,
	PRIMARY KEY (fast, slow)
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
`
