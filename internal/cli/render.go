package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ductnet/internal/codec"
	"ductnet/internal/domain"
	"ductnet/internal/inference"
	"ductnet/internal/service"
)

// printResult prints v as JSON when --json is set, otherwise runs text
func printResult(w io.Writer, v any, text func(io.Writer) error) error {
	if jsonOutput {
		return codec.WriteJSON(w, v)
	}
	return text(w)
}

// parseWellIDs parses well ID arguments
func parseWellIDs(args []string) ([]domain.WellID, error) {
	ids := make([]domain.WellID, 0, len(args))
	for _, arg := range args {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid well ID %q", arg)
		}
		ids = append(ids, domain.WellID(n))
	}
	return ids, nil
}

// parseSince accepts an RFC 3339 time, a date, or a duration back from now
func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q: want RFC 3339 time, YYYY-MM-DD or duration", s)
}

func formatWells(ids []domain.WellID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, "-")
}

func short(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func renderImport(w io.Writer, r *service.ImportResult) error {
	t := defaultTheme
	fmt.Fprintf(w, "%s %s\n", t.goodStyle().Render("Imported"), t.hintStyle().Render(short(r.Revision, 12)))
	fmt.Fprintf(w, "  wells %d, directions %d, slots %d, cables %d, observations %d\n",
		r.Wells, r.Directions, r.Slots, r.Cables, r.Observations)
	return nil
}

func renderRoute(w io.Writer, r *service.RouteResult) error {
	t := defaultTheme
	fmt.Fprintf(w, "%s %s  %d hops  %.1f m\n",
		t.headerStyle().Render("Route"), formatWells(r.Path.WellIDs), r.Path.Hops(), r.Path.LengthM)
	if len(r.Legs) > 1 {
		for i, leg := range r.Legs {
			fmt.Fprintf(w, "  leg %d: %s (%.1f m)\n", i+1, formatWells(leg.WellIDs), leg.LengthM)
		}
	}
	for _, a := range r.Slots {
		slot := t.hintStyle().Render("new")
		if a.SlotID != 0 {
			slot = strconv.FormatInt(int64(a.SlotID), 10)
		}
		fmt.Fprintf(w, "  direction %d  slot %d  (record %s)\n", a.DirectionID, a.SlotNumber, slot)
	}
	return nil
}

func renderReconcile(w io.Writer, r *service.ReconcileReport) error {
	t := defaultTheme
	fmt.Fprintf(w, "%s %s  known %d/%d  unaccounted %d (max %d)\n\n",
		t.headerStyle().Render("Inventory"), t.hintStyle().Render(short(r.Revision, 12)),
		r.KnownCount, len(r.Directions), r.TotalPositive, r.MaxPositive)

	fmt.Fprintln(w, t.headerStyle().Render(fmt.Sprintf("%5s  %-10s %-9s %5s %5s %5s %5s %6s  %s",
		"DIR", "NUMBER", "WELLS", "SLOTS", "FREE", "REC", "OBS", "VALUE", "CLASS")))
	for _, d := range r.Directions {
		obs, value := "-", "-"
		if d.Value.Known {
			obs = strconv.Itoa(d.Value.Observed)
			value = strconv.Itoa(d.Value.Value)
		}
		row := fmt.Sprintf("%5d  %-10s %-9s %5d %5d %5d %5s",
			d.Direction.ID, short(d.Direction.Number, 10),
			formatWells([]domain.WellID{d.Direction.StartWellID, d.Direction.EndWellID}),
			d.Direction.SlotCount, d.FreeSlots, d.Value.Recorded, obs)
		fmt.Fprintf(w, "%s %s  %s\n",
			t.valueStyle().Render(row),
			severityStyle(d.Severity.Color).Render(fmt.Sprintf("%6s", value)),
			severityStyle(d.Severity.Color).Render(string(d.Severity.Class)))
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "%s %s\n", t.errorStyle().Render("warning:"), warning.String())
	}
	return nil
}

func renderInference(w io.Writer, r *inference.Result) error {
	t := defaultTheme
	fmt.Fprintf(w, "%s %s: %d routes, explained %d/%d unaccounted (%.1f%%)\n",
		t.headerStyle().Render("Variant"), r.Variant, len(r.Routes),
		r.UsedUnaccounted, r.TotalUnaccounted, r.Stats.Coverage()*100)
	if len(r.Routes) == 0 {
		return nil
	}
	renderRoutes(w, r.Routes)
	if verbose {
		fmt.Fprintf(w, "  mean length %.1f m, mean hops %.1f, mean confidence %.2f, owners unknown %d\n",
			r.Stats.MeanLengthM, r.Stats.MeanHops, r.Stats.MeanConfidence, r.Stats.OwnersUnknown)
	}
	return nil
}

func renderRoutes(w io.Writer, routes []domain.AssumedRoute) {
	t := defaultTheme
	fmt.Fprintln(w, t.headerStyle().Render(fmt.Sprintf("  %-9s %-9s %-16s %8s %6s %5s",
		"TIER", "WELLS", "DIRECTIONS", "LENGTH", "OWNER", "CONF")))
	for _, route := range routes {
		dirs := make([]string, len(route.DirectionIDs))
		for i, id := range route.DirectionIDs {
			dirs[i] = strconv.FormatInt(int64(id), 10)
		}
		owner := "-"
		switch {
		case route.OwnerUndetermined:
			owner = "?"
		case route.OwnerID != 0:
			owner = strconv.FormatInt(int64(route.OwnerID), 10)
		}
		fmt.Fprintf(w, "  %-9s %-9s %-16s %8.1f %6s %5.2f\n",
			route.Tier, formatWells([]domain.WellID{route.StartWellID, route.EndWellID}),
			short(strings.Join(dirs, ","), 16), route.LengthM, owner, route.Confidence)
	}
}

func renderScenarios(w io.Writer, scenarios []*domain.Scenario) error {
	t := defaultTheme
	if len(scenarios) == 0 {
		fmt.Fprintln(w, t.hintStyle().Render("No scenarios stored. Run \"ductnet rebuild\"."))
		return nil
	}
	fmt.Fprintln(w, t.headerStyle().Render(fmt.Sprintf("%-8s  %-10s %-12s %-20s %9s %6s",
		"ID", "VARIANT", "REVISION", "CREATED", "EXPLAINED", "ROUTES")))
	for _, s := range scenarios {
		fmt.Fprintf(w, "%-8s  %-10s %-12s %-20s %9s %6d\n",
			short(s.ID, 8), s.Variant, short(s.Revision, 12), s.CreatedAt.UTC().Format(time.DateTime),
			fmt.Sprintf("%d/%d", s.UsedUnaccounted, s.TotalUnaccounted), len(s.Routes))
		if verbose && len(s.Routes) > 0 {
			renderRoutes(w, s.Routes)
		}
	}
	return nil
}
