package mysql

const upsertProjectSQL = `
INSERT INTO projects
  (id, slug, titulo, categoria, fuente, estado, monto_asignado, beneficiarios,
   lat, lng, inicio, fin_estimada, proveedor, observaciones, meses, position, run_id)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  slug           = VALUES(slug),
  titulo         = VALUES(titulo),
  categoria      = VALUES(categoria),
  fuente         = VALUES(fuente),
  estado         = VALUES(estado),
  monto_asignado = VALUES(monto_asignado),
  beneficiarios  = VALUES(beneficiarios),
  lat            = VALUES(lat),
  lng            = VALUES(lng),
  inicio         = VALUES(inicio),
  fin_estimada   = VALUES(fin_estimada),
  proveedor      = VALUES(proveedor),
  observaciones  = VALUES(observaciones),
  meses          = VALUES(meses),
  position       = VALUES(position),
  run_id         = VALUES(run_id),
  updated_at     = CURRENT_TIMESTAMP
`

// Rows not stamped by the current run belong to an older snapshot.
const deleteStaleSQL = `DELETE FROM projects WHERE run_id <> ?`

const insertRunSQL = `
INSERT INTO sync_runs (id, started_at, duration, projects, months, photos, status, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const projectColumns = `
  id, slug, titulo, categoria, fuente, estado, monto_asignado, beneficiarios,
  lat, lng, inicio, fin_estimada, proveedor, observaciones, meses
`

// Snapshot order is the source sheet's row order.
const listProjectsSQL = `SELECT` + projectColumns + `FROM projects ORDER BY position, id`

const getProjectSQL = `SELECT` + projectColumns + `FROM projects WHERE id = ?`
