// Package store persists netlist snapshots to SQLite. A snapshot is a full
// copy of a netlist's nodes, bindings, and attributes under a generated ID;
// loading rebuilds an equivalent netlist through the public mutation API.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pflow-xyz/go-netlist/netlist"
)

// Store handles SQLite database operations for netlist snapshots.
type Store struct {
	db *sql.DB
}

// Snapshot describes one stored netlist.
type Snapshot struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Nodes     int
	Edges     int
}

// gateRecord is the JSON shape a gate template is stored as.
type gateRecord struct {
	Name   string   `json:"name"`
	Inputs []string `json:"inputs"`
	Output string   `json:"output"`
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS netlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		netlist_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		name TEXT NOT NULL,
		port_pos INTEGER,
		gate TEXT,
		attrs TEXT,
		PRIMARY KEY (netlist_id, idx),
		FOREIGN KEY (netlist_id) REFERENCES netlists(id)
	);

	CREATE TABLE IF NOT EXISTS edges (
		netlist_id TEXT NOT NULL,
		to_idx INTEGER NOT NULL,
		to_pin INTEGER NOT NULL,
		from_idx INTEGER NOT NULL,
		PRIMARY KEY (netlist_id, to_idx, to_pin),
		FOREIGN KEY (netlist_id) REFERENCES netlists(id)
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_netlist ON nodes(netlist_id);
	CREATE INDEX IF NOT EXISTS idx_edges_netlist ON edges(netlist_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a full snapshot of nl in one transaction and returns its
// generated snapshot ID.
func (s *Store) Save(nl *netlist.Netlist) (string, error) {
	id := uuid.New().String()
	nodes := nl.Nodes()
	conns := nl.Connections()

	// Dense indices in registry order; edges reference these. Registry order
	// diverges from the declared port order once a freed slot is reused, so
	// the position of each port in its declared list is recorded separately.
	index := make(map[netlist.ID]int, len(nodes))
	for i, h := range nodes {
		index[h.ID()] = i
	}
	portPos := make(map[netlist.ID]int)
	for i, h := range nl.Inputs() {
		portPos[h.ID()] = i
	}
	for i, h := range nl.Outputs() {
		portPos[h.ID()] = i
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO netlists (id, name, node_count, edge_count) VALUES (?, ?, ?, ?)`,
		id, nl.Name(), len(nodes), len(conns),
	)
	if err != nil {
		return "", fmt.Errorf("insert netlist: %w", err)
	}

	for i, h := range nodes {
		kind, err := h.Kind()
		if err != nil {
			return "", fmt.Errorf("node %d: %w", i, err)
		}
		name, err := h.Name()
		if err != nil {
			return "", fmt.Errorf("node %d: %w", i, err)
		}
		var gateJSON any
		if gate, ok, err := h.Gate(); err != nil {
			return "", fmt.Errorf("node %d: %w", i, err)
		} else if ok {
			raw, err := json.Marshal(gateRecord{Name: gate.Name, Inputs: gate.Inputs, Output: gate.Output})
			if err != nil {
				return "", fmt.Errorf("node %d: marshal gate: %w", i, err)
			}
			gateJSON = string(raw)
		}
		var attrsJSON any
		if attrs, err := h.Attrs(); err != nil {
			return "", fmt.Errorf("node %d: %w", i, err)
		} else if len(attrs) > 0 {
			raw, err := json.Marshal(attrs)
			if err != nil {
				return "", fmt.Errorf("node %d: marshal attrs: %w", i, err)
			}
			attrsJSON = string(raw)
		}
		var pos any
		if p, ok := portPos[h.ID()]; ok {
			pos = p
		}
		_, err = tx.Exec(
			`INSERT INTO nodes (netlist_id, idx, kind, name, port_pos, gate, attrs) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, int(kind), name, pos, gateJSON, attrsJSON,
		)
		if err != nil {
			return "", fmt.Errorf("insert node %d: %w", i, err)
		}
	}

	for _, c := range conns {
		_, err = tx.Exec(
			`INSERT INTO edges (netlist_id, to_idx, to_pin, from_idx) VALUES (?, ?, ?, ?)`,
			id, index[c.To.Node], c.To.Pin, index[c.From.Node],
		)
		if err != nil {
			return "", fmt.Errorf("insert edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Load rebuilds the netlist stored under snapshot id.
func (s *Store) Load(id string) (*netlist.Netlist, error) {
	var name string
	err := s.db.QueryRow(`SELECT name FROM netlists WHERE id = ?`, id).Scan(&name)
	if err != nil {
		return nil, fmt.Errorf("load netlist %s: %w", id, err)
	}

	type nodeRow struct {
		idx     int
		kind    netlist.Kind
		name    string
		portPos int
		gate    *gateRecord
	}
	var rows []nodeRow
	attrsByIdx := make(map[int]map[string]string)

	nrs, err := s.db.Query(
		`SELECT idx, kind, name, port_pos, gate, attrs FROM nodes WHERE netlist_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	defer nrs.Close()
	for nrs.Next() {
		var r nodeRow
		var kind int
		var pos sql.NullInt64
		var gateJSON, attrsJSON sql.NullString
		if err := nrs.Scan(&r.idx, &kind, &r.name, &pos, &gateJSON, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		r.kind = netlist.Kind(kind)
		if pos.Valid {
			r.portPos = int(pos.Int64)
		}
		if gateJSON.Valid {
			var g gateRecord
			if err := json.Unmarshal([]byte(gateJSON.String), &g); err != nil {
				return nil, fmt.Errorf("node %d: unmarshal gate: %w", r.idx, err)
			}
			r.gate = &g
		}
		if attrsJSON.Valid {
			attrs := make(map[string]string)
			if err := json.Unmarshal([]byte(attrsJSON.String), &attrs); err != nil {
				return nil, fmt.Errorf("node %d: unmarshal attrs: %w", r.idx, err)
			}
			attrsByIdx[r.idx] = attrs
		}
		rows = append(rows, r)
	}
	if err := nrs.Err(); err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}

	type edgeRow struct {
		toIdx, toPin, fromIdx int
	}
	var edges []edgeRow
	ers, err := s.db.Query(
		`SELECT to_idx, to_pin, from_idx FROM edges WHERE netlist_id = ? ORDER BY to_idx, to_pin`, id)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	defer ers.Close()
	for ers.Next() {
		var e edgeRow
		if err := ers.Scan(&e.toIdx, &e.toPin, &e.fromIdx); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := ers.Err(); err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	// Rebuild: inputs and instances first, then instance wiring, then
	// outputs. Ports are re-declared in their recorded positions so the
	// declared order survives even when registry order diverged from it.
	nl := netlist.New(name)
	byIdx := make(map[int]netlist.Handle, len(rows))
	driverOf := make(map[int]int) // output idx -> producer idx
	for _, e := range edges {
		driverOf[e.toIdx] = e.fromIdx
	}

	var inputs, outputs []nodeRow
	for _, r := range rows {
		switch r.kind {
		case netlist.KindInput:
			inputs = append(inputs, r)
		case netlist.KindOutput:
			outputs = append(outputs, r)
		}
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].portPos < inputs[j].portPos })
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].portPos < outputs[j].portPos })

	for _, r := range inputs {
		h, err := nl.InsertInput(r.name)
		if err != nil {
			return nil, fmt.Errorf("rebuild input %q: %w", r.name, err)
		}
		byIdx[r.idx] = h
	}
	for _, r := range rows {
		if r.kind != netlist.KindInstance {
			continue
		}
		if r.gate == nil {
			return nil, fmt.Errorf("rebuild instance %q: missing gate record", r.name)
		}
		gate := netlist.NewGate(r.gate.Name, r.gate.Inputs, r.gate.Output)
		h, err := nl.InsertGateDisconnected(gate, r.name)
		if err != nil {
			return nil, fmt.Errorf("rebuild instance %q: %w", r.name, err)
		}
		byIdx[r.idx] = h
	}
	for _, e := range edges {
		consumer, ok := byIdx[e.toIdx]
		if !ok {
			continue // output wiring happens below
		}
		driver, ok := byIdx[e.fromIdx]
		if !ok {
			return nil, fmt.Errorf("rebuild: edge from unknown node %d", e.fromIdx)
		}
		if err := consumer.Connect(e.toPin, driver); err != nil {
			return nil, fmt.Errorf("rebuild: connect node %d pin %d: %w", e.toIdx, e.toPin, err)
		}
	}
	for _, r := range outputs {
		from, ok := driverOf[r.idx]
		if !ok {
			return nil, fmt.Errorf("rebuild output %q: no driver recorded", r.name)
		}
		driver, ok := byIdx[from]
		if !ok {
			return nil, fmt.Errorf("rebuild output %q: driver %d unknown", r.name, from)
		}
		h, err := driver.ExposeWithName(r.name)
		if err != nil {
			return nil, fmt.Errorf("rebuild output %q: %w", r.name, err)
		}
		byIdx[r.idx] = h
	}
	for idx, attrs := range attrsByIdx {
		h, ok := byIdx[idx]
		if !ok {
			return nil, fmt.Errorf("rebuild: attributes for unknown node %d", idx)
		}
		for k, v := range attrs {
			if err := h.SetAttrValue(k, v); err != nil {
				return nil, fmt.Errorf("rebuild: attribute %q: %w", k, err)
			}
		}
	}
	return nl, nil
}

// List returns all stored snapshots, newest first.
func (s *Store) List() ([]Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT id, name, created_at, node_count, edge_count FROM netlists ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(&sn.ID, &sn.Name, &sn.CreatedAt, &sn.Nodes, &sn.Edges); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

// Delete removes a snapshot and its rows.
func (s *Store) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for _, q := range []string{
		`DELETE FROM edges WHERE netlist_id = ?`,
		`DELETE FROM nodes WHERE netlist_id = ?`,
		`DELETE FROM netlists WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
	}
	return tx.Commit()
}
