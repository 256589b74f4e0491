//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"
	"time"

	"github.com/inkboard/inkboard/internal/document"
	"github.com/inkboard/inkboard/internal/engine"
	"github.com/inkboard/inkboard/internal/export"
	"github.com/inkboard/inkboard/internal/render"
	"github.com/inkboard/inkboard/internal/typeid"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(engine.WithConfirm(confirmDelete), engine.WithOnCommit(forwardChanges))

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("setStrokeColor", js.FuncOf(setStrokeColor))
	api.Set("setStrokeWidth", js.FuncOf(setStrokeWidth))
	api.Set("setFillColor", js.FuncOf(setFillColor))
	api.Set("setOpacity", js.FuncOf(setOpacity))
	api.Set("setShowGrid", js.FuncOf(setShowGrid))
	api.Set("setTheme", js.FuncOf(setTheme))
	api.Set("setScreenSize", js.FuncOf(setScreenSize))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("zoomIn", js.FuncOf(zoomIn))
	api.Set("zoomOut", js.FuncOf(zoomOut))
	api.Set("resetZoom", js.FuncOf(resetZoom))
	api.Set("fitToScreen", js.FuncOf(fitToScreen))
	api.Set("deleteSelected", js.FuncOf(deleteSelected))
	api.Set("clearCanvas", js.FuncOf(clearCanvas))
	api.Set("loadSample", js.FuncOf(loadSample))
	api.Set("importJSON", js.FuncOf(importJSON))
	api.Set("commitText", js.FuncOf(commitText))
	api.Set("cancelText", js.FuncOf(cancelText))

	// --- Replay (relay → engine) ---
	api.Set("addPath", js.FuncOf(addPath))
	api.Set("addShape", js.FuncOf(addShape))
	api.Set("updateShape", js.FuncOf(updateShape))
	api.Set("deleteElements", js.FuncOf(deleteElements))

	// --- Input events ---
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("doubleClick", js.FuncOf(doubleClick))
	api.Set("cancel", js.FuncOf(cancel))
	api.Set("wheel", js.FuncOf(wheel))
	api.Set("keyDown", js.FuncOf(keyDown))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(renderFrame))
	api.Set("getState", js.FuncOf(getState))
	api.Set("exportJSON", js.FuncOf(exportJSON))
	api.Set("exportSVG", js.FuncOf(exportSVG))

	js.Global().Set("inkboardEngine", api)
	js.Global().Set("inkboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func confirmDelete(n int) bool {
	msg := "Delete the selected element?"
	if n > 1 {
		msg = fmt.Sprintf("Delete %d selected elements?", n)
	}
	return js.Global().Call("confirm", msg).Bool()
}

// outgoingOp is a local change stamped for the relay.
type outgoingOp struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	engine.Change
}

// forwardChanges hands each committed local edit to the page's
// inkboardOnCommit hook, if one is installed.
func forwardChanges(changes []engine.Change) {
	hook := js.Global().Get("inkboardOnCommit")
	if hook.Type() != js.TypeFunction {
		return
	}
	for _, c := range changes {
		data, err := json.Marshal(outgoingOp{
			ID:        typeid.NewOpID(),
			Timestamp: time.Now().UnixMilli(),
			Change:    c,
		})
		if err != nil {
			continue
		}
		hook.Invoke(string(data))
	}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func argString(args []js.Value, i int) (string, bool) {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return "", false
	}
	return args[i].String(), true
}

func argFloat(args []js.Value, i int) (float64, bool) {
	if len(args) <= i || args[i].Type() != js.TypeNumber {
		return 0, false
	}
	return args[i].Float(), true
}

func argBool(args []js.Value, i int) bool {
	return len(args) > i && args[i].Truthy()
}

// decodeArg unmarshals a JSON string argument into v.
func decodeArg(args []js.Value, i int, v interface{}) bool {
	s, ok := argString(args, i)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(s), v) == nil
}

// --- Command Handlers ---

func setTool(this js.Value, args []js.Value) interface{} {
	s, _ := argString(args, 0)
	if err := eng.SetTool(engine.Tool(s)); err != nil {
		return fail(err)
	}
	return ok()
}

func setStrokeColor(this js.Value, args []js.Value) interface{} {
	if s, ok := argString(args, 0); ok {
		eng.SetStrokeColor(s)
	}
	return nil
}

func setStrokeWidth(this js.Value, args []js.Value) interface{} {
	if w, ok := argFloat(args, 0); ok {
		eng.SetStrokeWidth(w)
	}
	return nil
}

func setFillColor(this js.Value, args []js.Value) interface{} {
	if s, ok := argString(args, 0); ok {
		eng.SetFillColor(s)
	}
	return nil
}

func setOpacity(this js.Value, args []js.Value) interface{} {
	if o, ok := argFloat(args, 0); ok {
		eng.SetOpacity(o)
	}
	return nil
}

func setShowGrid(this js.Value, args []js.Value) interface{} {
	eng.SetShowGrid(argBool(args, 0))
	return nil
}

func setTheme(this js.Value, args []js.Value) interface{} {
	if s, ok := argString(args, 0); ok {
		eng.SetTheme(render.Theme(s))
	}
	return nil
}

func setScreenSize(this js.Value, args []js.Value) interface{} {
	w, okW := argFloat(args, 0)
	h, okH := argFloat(args, 1)
	if okW && okH {
		eng.SetScreenSize(w, h)
	}
	return nil
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

func zoomIn(this js.Value, args []js.Value) interface{} {
	eng.ZoomIn()
	return nil
}

func zoomOut(this js.Value, args []js.Value) interface{} {
	eng.ZoomOut()
	return nil
}

func resetZoom(this js.Value, args []js.Value) interface{} {
	eng.ResetZoom()
	return nil
}

func fitToScreen(this js.Value, args []js.Value) interface{} {
	eng.FitToScreen()
	return nil
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.DeleteSelected())
}

func clearCanvas(this js.Value, args []js.Value) interface{} {
	eng.ClearCanvas()
	return nil
}

func loadSample(this js.Value, args []js.Value) interface{} {
	eng.LoadScene(document.NewSampleScene())
	return ok()
}

func importJSON(this js.Value, args []js.Value) interface{} {
	s, present := argString(args, 0)
	if !present {
		return js.ValueOf(map[string]interface{}{"error": "missing scene JSON"})
	}
	if err := eng.ImportJSON([]byte(s)); err != nil {
		return fail(err)
	}
	return ok()
}

func commitText(this js.Value, args []js.Value) interface{} {
	s, _ := argString(args, 0)
	if err := eng.CommitText(s); err != nil {
		return fail(err)
	}
	return ok()
}

func cancelText(this js.Value, args []js.Value) interface{} {
	eng.CancelText()
	return nil
}

// --- Replay Handlers ---
// Remote elements arrive as JSON strings in the scene file format.

func addPath(this js.Value, args []js.Value) interface{} {
	var p document.Path
	if !decodeArg(args, 0, &p) {
		return js.ValueOf(map[string]interface{}{"error": "invalid path JSON"})
	}
	if err := eng.AddPath(p); err != nil {
		return fail(err)
	}
	return ok()
}

func addShape(this js.Value, args []js.Value) interface{} {
	var s document.Shape
	if !decodeArg(args, 0, &s) {
		return js.ValueOf(map[string]interface{}{"error": "invalid shape JSON"})
	}
	if err := eng.AddShape(s); err != nil {
		return fail(err)
	}
	return ok()
}

func updateShape(this js.Value, args []js.Value) interface{} {
	id, present := argString(args, 0)
	var patch document.ShapePatch
	if !present || !decodeArg(args, 1, &patch) {
		return js.ValueOf(map[string]interface{}{"error": "missing id or patch JSON"})
	}
	if err := eng.UpdateShape(id, patch); err != nil {
		return fail(err)
	}
	return ok()
}

func deleteElements(this js.Value, args []js.Value) interface{} {
	var ids []string
	if !decodeArg(args, 0, &ids) {
		return js.ValueOf(0)
	}
	return js.ValueOf(eng.DeleteElements(ids))
}

// --- Input Handlers ---
// Events arrive as JSON strings matching the engine event structs.

func pointerDown(this js.Value, args []js.Value) interface{} {
	var ev engine.PointerEvent
	if decodeArg(args, 0, &ev) {
		eng.PointerDown(ev)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	var ev engine.PointerEvent
	if decodeArg(args, 0, &ev) {
		eng.PointerMove(ev)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	var ev engine.PointerEvent
	if decodeArg(args, 0, &ev) {
		eng.PointerUp(ev)
	}
	return nil
}

func doubleClick(this js.Value, args []js.Value) interface{} {
	var ev engine.PointerEvent
	if !decodeArg(args, 0, &ev) {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.DoubleClick(ev))
}

func cancel(this js.Value, args []js.Value) interface{} {
	eng.Cancel()
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	var ev engine.WheelEvent
	if decodeArg(args, 0, &ev) {
		eng.Wheel(ev)
	}
	return nil
}

// keyDown reports whether the key was handled so the page can call
// preventDefault.
func keyDown(this js.Value, args []js.Value) interface{} {
	var ev engine.KeyEvent
	if !decodeArg(args, 0, &ev) {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.KeyDown(ev))
}

// --- Query Handlers ---

func renderFrame(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RenderJSON())
}

func getState(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(eng.State())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func exportJSON(this js.Value, args []js.Value) interface{} {
	data, err := eng.ExportJSON()
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

func exportSVG(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(string(export.SVG(eng.Scene())))
}
