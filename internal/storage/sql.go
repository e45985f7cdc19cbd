package storage

const (
	initSchemaSQL = `
CREATE TABLE IF NOT EXISTS tx_currents
(
    frequency REAL PRIMARY KEY,
    current   REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS rx_stats
(
    line           INTEGER NOT NULL,
    site           INTEGER NOT NULL,
    device         INTEGER NOT NULL,
    channel        INTEGER NOT NULL,
    tag            TEXT    NOT NULL,
    frequency      REAL    NOT NULL,
    samples        INTEGER NOT NULL,
    mean           REAL,
    relative_error REAL,
    PRIMARY KEY (line, site, device, channel, tag, frequency)
);`

	deleteCurrentsSQL = `DELETE FROM tx_currents`

	insertCurrentSQL = `
INSERT INTO tx_currents (frequency, 
                         current)
VALUES (?, ?)`

	selectCurrentsSQL = `
SELECT 
    frequency, 
    current 
FROM tx_currents 
ORDER BY frequency`

	upsertStationStatsSQL = `
INSERT INTO rx_stats (line,
                      site,
                      device,
                      channel,
                      tag,
                      frequency,
                      samples,
                      mean,
                      relative_error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (line, site, device, channel, tag, frequency) DO UPDATE SET 
    samples        = excluded.samples,
    mean           = excluded.mean,
    relative_error = excluded.relative_error`

	// Currents are matched with the same relative tolerance as CurrentLookup.
	selectSummariesSQL = `
SELECT 
    r.line,
    r.site,
    r.device,
    r.channel,
    r.tag,
    r.frequency,
    r.samples,
    t.current,
    r.mean,
    r.relative_error
FROM rx_stats r
    LEFT JOIN tx_currents t 
        ON ABS(t.frequency - r.frequency) <= 1e-9 * MAX(1.0, ABS(r.frequency))
ORDER BY r.line, r.site, r.device, r.channel, r.tag, r.frequency`
)
