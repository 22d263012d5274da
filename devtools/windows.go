package devtools

import (
	"fmt"
	"strings"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/nolantait/flock/ecs"
)

const overlayTableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg

// perfWindow shows frame timing, storage counts and per-system durations.
// It keeps its own wall clock so paused game time still shows real frame
// cost.
type perfWindow struct {
	history  []float32
	index    int
	lastTick time.Time
}

func newPerfWindow(historyFrames int) *perfWindow {
	return &perfWindow{
		history:  make([]float32, historyFrames),
		lastTick: time.Now(),
	}
}

func (w *perfWindow) render(storage *ecs.Storage, scheduler *ecs.Scheduler) {
	if !imgui.BeginV("Performance", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	now := time.Now()
	w.history[w.index] = float32(now.Sub(w.lastTick).Seconds() * 1000)
	w.lastTick = now
	w.index = (w.index + 1) % len(w.history)

	var avg float32
	for _, ms := range w.history {
		avg += ms
	}
	avg /= float32(len(w.history))

	stats := storage.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Archetypes: %d", stats.ArchetypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))
	imgui.Text(fmt.Sprintf("Frame: %.2f ms avg (%.0f FPS)", avg, 1000.0/avg))
	imgui.PlotLinesFloatPtr("##frametimes", &w.history[0], int32(len(w.history)))

	if imgui.TreeNodeStr("Systems") {
		if imgui.BeginTableV("SystemTable", 4, overlayTableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Stage")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableHeadersRow()

			for _, system := range scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(system.Name)
				imgui.TableNextColumn()
				imgui.Text(system.Stage.String())
				imgui.TableNextColumn()
				imgui.Text(system.LastDuration.Round(time.Microsecond).String())
				imgui.TableNextColumn()
				imgui.Text(system.AvgDuration.Round(time.Microsecond).String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Archetypes") {
		if imgui.BeginTableV("ArchetypeTable", 3, overlayTableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("ID")
			imgui.TableSetupColumn("Components")
			imgui.TableSetupColumn("Entities")
			imgui.TableHeadersRow()

			for _, arch := range stats.ArchetypeBreakdown {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("0x%X", arch.ID))
				imgui.TableNextColumn()
				imgui.Text(strings.Join(arch.ComponentTypes, ", "))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", arch.EntityCount))
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

// entityRow is one cached line of the entity browser.
type entityRow struct {
	id         ecs.EntityId
	archetype  uint32
	components string
}

// entityBrowser lists live entities with a substring filter. The row cache
// is rebuilt whenever the archetype count changes; per-entity churn inside
// existing archetypes refreshes on the next rebuild.
type entityBrowser struct {
	filter         string
	rows           []entityRow
	lastArchetypes int
}

func newEntityBrowser() *entityBrowser {
	return &entityBrowser{lastArchetypes: -1}
}

func (b *entityBrowser) render(storage *ecs.Storage) {
	if !imgui.BeginV("Entities", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	b.rebuild(storage)

	imgui.InputTextWithHint("##filter", "Filter by component...", &b.filter, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear") {
		b.filter = ""
	}

	shown := 0
	if imgui.BeginTableV("EntityTable", 3, overlayTableFlags|imgui.TableFlagsScrollY, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Archetype")
		imgui.TableSetupColumn("Components")
		imgui.TableHeadersRow()

		needle := strings.ToLower(b.filter)
		for _, row := range b.rows {
			if needle != "" && !strings.Contains(strings.ToLower(row.components), needle) {
				continue
			}
			shown++
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.id))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", row.archetype))
			imgui.TableNextColumn()
			imgui.Text(row.components)
		}
		imgui.EndTable()
	}
	imgui.Text(fmt.Sprintf("%d / %d entities", shown, len(b.rows)))

	imgui.End()
}

func (b *entityBrowser) rebuild(storage *ecs.Storage) {
	stats := storage.CollectStats()
	if stats.ArchetypeCount == b.lastArchetypes && b.rows != nil {
		return
	}
	b.lastArchetypes = stats.ArchetypeCount

	b.rows = b.rows[:0]
	for _, archetype := range storage.GetArchetypes() {
		components := make([]string, len(archetype.Types()))
		for i, typ := range archetype.Types() {
			components[i] = typ.String()
		}
		joined := strings.Join(components, ", ")
		for id := range archetype.Iter() {
			b.rows = append(b.rows, entityRow{
				id:         id,
				archetype:  archetype.ID(),
				components: joined,
			})
		}
	}
}
