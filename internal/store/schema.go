package store

const schema = `
CREATE TABLE IF NOT EXISTS packages (
    name TEXT PRIMARY KEY,
    version TEXT NOT NULL,
    installed_at TIMESTAMP NOT NULL,
    archive TEXT
);

CREATE TABLE IF NOT EXISTS package_files (
    package TEXT NOT NULL,
    path TEXT NOT NULL,
    PRIMARY KEY (package, path),
    FOREIGN KEY (package) REFERENCES packages(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS dependencies (
    package TEXT NOT NULL,
    name TEXT NOT NULL,
    version TEXT NOT NULL,
    condition TEXT NOT NULL,
    PRIMARY KEY (package, name),
    FOREIGN KEY (package) REFERENCES packages(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS installs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package TEXT NOT NULL,
    version TEXT,
    installed_at TIMESTAMP NOT NULL,
    success BOOLEAN NOT NULL,
    detail TEXT,
    backup_path TEXT
);

CREATE INDEX IF NOT EXISTS idx_files_package ON package_files(package);
CREATE INDEX IF NOT EXISTS idx_deps_package ON dependencies(package);
CREATE INDEX IF NOT EXISTS idx_installs_package ON installs(package);
CREATE INDEX IF NOT EXISTS idx_installs_time ON installs(installed_at);
`
