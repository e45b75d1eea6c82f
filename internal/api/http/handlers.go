package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/measurelab/scaletab/internal/rasch"
	"github.com/measurelab/scaletab/internal/scaling"
)

type buildTableReq struct {
	Name    string             `json:"name"`
	Subject string             `json:"subject,omitempty"`
	Points  []rasch.ScorePoint `json:"points"`
	Cuts    scaling.Cuts       `json:"cuts"`
	Anchors scaling.Anchors    `json:"anchors"`
}

// POST /tables
func BuildTableHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req buildTableReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		src, err := rasch.NewTable(req.Points)
		if err != nil {
			http.Error(w, "score table: "+err.Error(), http.StatusBadRequest)
			return
		}
		buildAndStore(w, r, store, req.Name, req.Subject, src, req.Cuts, req.Anchors)
	}
}

// POST /tables/import (multipart: file=scores.csv plus cut/anchor form fields)
func ImportCSVHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", 400)
			return
		}
		defer f.Close()

		src, err := rasch.ParseCSV(f)
		if err != nil {
			http.Error(w, "parse csv: "+err.Error(), 400)
			return
		}
		cuts, anchors, err := cutsFromForm(r)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		name := r.FormValue("name")
		if name == "" {
			name = strings.TrimSuffix(hdr.Filename, ".csv")
		}
		buildAndStore(w, r, store, name, r.FormValue("subject"), src, cuts, anchors)
	}
}

func buildAndStore(w http.ResponseWriter, r *http.Request, store scaling.Store,
	name, subject string, src *rasch.Table, cuts scaling.Cuts, anchors scaling.Anchors) {

	if strings.TrimSpace(name) == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	table, err := scaling.Build(src, cuts, anchors)
	if err != nil {
		var empty *scaling.EmptyDistributionError
		if !errors.As(err, &empty) {
			http.Error(w, "build table: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		// zero population: transform columns are valid, keep going
	}
	rec := scaling.TableRecord{
		ID:        time.Now().UTC().Format("20060102150405.000000000"),
		Name:      name,
		Subject:   subject,
		CreatedAt: time.Now().Unix(),
		Table:     table,
	}
	if err := store.PutTable(r.Context(), rec); err != nil {
		http.Error(w, "store table: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rec)
}

func cutsFromForm(r *http.Request) (scaling.Cuts, scaling.Anchors, error) {
	var cuts scaling.Cuts
	var anchors scaling.Anchors
	var err error
	if cuts.Approaching, err = strconv.Atoi(r.FormValue("approaching_cut")); err != nil {
		return cuts, anchors, fmt.Errorf("bad approaching_cut")
	}
	if cuts.Proficient, err = strconv.Atoi(r.FormValue("proficient_cut")); err != nil {
		return cuts, anchors, fmt.Errorf("bad proficient_cut")
	}
	if cuts.Advanced, err = strconv.Atoi(r.FormValue("advanced_cut")); err != nil {
		return cuts, anchors, fmt.Errorf("bad advanced_cut")
	}
	if anchors.Approaching, err = strconv.ParseFloat(r.FormValue("approaching_scale"), 64); err != nil {
		return cuts, anchors, fmt.Errorf("bad approaching_scale")
	}
	if anchors.Proficient, err = strconv.ParseFloat(r.FormValue("proficient_scale"), 64); err != nil {
		return cuts, anchors, fmt.Errorf("bad proficient_scale")
	}
	return cuts, anchors, nil
}

// GET /tables
func ListTablesHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		out, err := store.ListTables(r.Context(), scaling.ListOpts{
			Q:      r.URL.Query().Get("q"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			http.Error(w, "list tables: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if out == nil {
			out = []scaling.TableSummary{}
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /tables/{tableID}
func GetTableHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := fetchTable(w, r, store)
		if !ok {
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	}
}

// DELETE /tables/{tableID}
func DeleteTableHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "tableID"))
		if id == "" {
			http.Error(w, "tableID required", http.StatusBadRequest)
			return
		}
		if err := store.DeleteTable(r.Context(), id); err != nil {
			if errors.Is(err, scaling.ErrTableNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "delete table: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /tables/{tableID}/impact
func ImpactHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := fetchTable(w, r, store)
		if !ok {
			return
		}
		rows, err := rec.Table.Impact()
		if err != nil {
			http.Error(w, "impact: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		_ = json.NewEncoder(w).Encode(rows)
	}
}

type targetsReq struct {
	ItemMeasures []float64 `json:"item_measures"`
}

type targetsResp struct {
	Pool       *scaling.Band `json:"pool,omitempty"`
	CutAligned scaling.Band  `json:"cut_aligned"`
}

// POST /tables/{tableID}/targets
func TargetsHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := fetchTable(w, r, store)
		if !ok {
			return
		}
		var req targetsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		var resp targetsResp
		if len(req.ItemMeasures) > 0 {
			band, err := rec.Table.PoolBand(req.ItemMeasures)
			if err != nil {
				http.Error(w, "pool band: "+err.Error(), http.StatusUnprocessableEntity)
				return
			}
			resp.Pool = &band
		}
		band, err := rec.Table.CutAlignedBand()
		if err != nil {
			http.Error(w, "cut band: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		resp.CutAligned = band
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// GET /tables/{tableID}/export — the published lookup table as CSV.
func ExportCSVHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := fetchTable(w, r, store)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.ID+".csv"))

		cw := csv.NewWriter(w)
		_ = cw.Write([]string{
			"raw_score", "frequency", "cumulative_frequency", "measure", "std_err",
			"scale_score", "scale_score_se", "rounded_scale_score", "rounded_scale_score_se",
			"performance_level", "performance_label", "percentile",
		})
		for _, row := range rec.Table.Rows {
			_ = cw.Write([]string{
				strconv.Itoa(row.RawScore),
				strconv.Itoa(row.Frequency),
				strconv.Itoa(row.CumulativeFrequency),
				formatFloat(float64(row.Measure)),
				formatFloat(float64(row.StdErr)),
				formatFloat(float64(row.ScaleScore)),
				formatFloat(float64(row.ScaleScoreSE)),
				formatFloat(float64(row.Rounded)),
				formatFloat(float64(row.RoundedSE)),
				strconv.Itoa(int(row.Level)),
				row.Label,
				formatFloat(row.Percentile),
			})
		}
		cw.Flush()
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func fetchTable(w http.ResponseWriter, r *http.Request, store scaling.Store) (scaling.TableRecord, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "tableID"))
	if id == "" {
		http.Error(w, "tableID required", http.StatusBadRequest)
		return scaling.TableRecord{}, false
	}
	rec, err := store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, scaling.ErrTableNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return scaling.TableRecord{}, false
		}
		http.Error(w, "get table: "+err.Error(), http.StatusInternalServerError)
		return scaling.TableRecord{}, false
	}
	return rec, true
}
