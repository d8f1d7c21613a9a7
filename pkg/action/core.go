package action

import (
	"strconv"
	"strings"

	"github.com/sentrywaf/engine/pkg/dpi"
	"github.com/sentrywaf/engine/pkg/field"
	"github.com/sentrywaf/engine/pkg/types"
)

func coreActionDefs() []Def {
	return []Def{
		{Name: "setflag", Create: createSetflag, Execute: executeSetflag},
		{Name: "setvar", Create: createSetvar, Execute: executeSetvar},
		{Name: "event", Create: nil, Execute: executeEvent},
		{Name: "block", Create: createBlock, Execute: executeBlock},
		{Name: "status", Create: createStatus, Execute: executeStatus},
	}
}

// -- setflag --------------------------------------------------------

func createSetflag(params string) (interface{}, InstanceFlags, error) {
	if params == "" {
		return nil, 0, types.NewError(types.Invalid, "setflag requires a flag name")
	}
	return params, 0, nil
}

func executeSetflag(data interface{}, rule *Rule, ctx *ExecContext, flags InstanceFlags) error {
	name := data.(string)
	switch strings.ToLower(name) {
	case "suspicious":
		*ctx.TxFlags |= types.TxFlagSuspicious
		return nil
	default:
		return types.NewError(types.Invalid, "setflag: unknown flag %q", name)
	}
}

// -- setvar -----------------------------------------------------------

type setvarOp int

const (
	setvarStrSet setvarOp = iota
	setvarNumSet
	setvarNumAdd
)

type setvarData struct {
	name  string
	op    setvarOp
	num   int64
	str   string
}

func createSetvar(params string) (interface{}, InstanceFlags, error) {
	eq := strings.IndexByte(params, '=')
	if eq <= 0 || eq == len(params)-1 {
		return nil, 0, types.NewError(types.Invalid, "setvar requires NAME=VALUE")
	}
	name := params[:eq]
	value := params[eq+1:]

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		op := setvarNumSet
		if value[0] == '+' || value[0] == '-' {
			op = setvarNumAdd
		}
		return &setvarData{name: name, op: op, num: n}, 0, nil
	}

	var flags InstanceFlags
	if dpi.ExpandTestStr(value) {
		flags |= FlagExpand
	}
	return &setvarData{name: name, op: setvarStrSet, str: value}, flags, nil
}

func executeSetvar(data interface{}, rule *Rule, ctx *ExecContext, flags InstanceFlags) error {
	sv := data.(*setvarData)

	switch sv.op {
	case setvarStrSet:
		expanded := sv.str
		if flags&FlagExpand != 0 {
			out, err := ctx.DPI.ExpandStr(sv.str)
			if err != nil {
				return err
			}
			expanded = out
		}
		if cur, _ := ctx.DPI.Get(sv.name); cur != nil {
			if _, err := ctx.DPI.Remove(sv.name); err != nil {
				return err
			}
		}
		return ctx.DPI.Add(field.Create(sv.name, types.FieldTypeByteStr, []byte(expanded)))

	case setvarNumSet:
		if cur, _ := ctx.DPI.Get(sv.name); cur != nil {
			if _, err := ctx.DPI.Remove(sv.name); err != nil {
				return err
			}
		}
		return ctx.DPI.Add(field.Create(sv.name, types.FieldTypeNum, sv.num))

	case setvarNumAdd:
		cur, _ := ctx.DPI.Get(sv.name)
		if cur == nil {
			return types.NewError(types.Invalid, "setvar: field %q does not exist for NUMADD", sv.name)
		}
		// NUMADD always reads the current value before adding, for
		// both NUM and UNUM fields — a field must never be summed
		// from anything other than its own prior value.
		v, err := cur.Value()
		if err != nil {
			return err
		}
		switch cur.Type() {
		case types.FieldTypeNum:
			n, ok := v.(int64)
			if !ok {
				return types.NewError(types.Invalid, "setvar: field %q NUM value has wrong Go type", sv.name)
			}
			return cur.Setv(n + sv.num)
		case types.FieldTypeUnum:
			u, ok := v.(uint64)
			if !ok {
				return types.NewError(types.Invalid, "setvar: field %q UNUM value has wrong Go type", sv.name)
			}
			return cur.Setv(u + uint64(sv.num))
		default:
			return types.NewError(types.Invalid, "setvar: field %q type %s invalid for NUMADD", sv.name, cur.Type())
		}

	default:
		return types.NewError(types.Invalid, "setvar: unknown operation")
	}
}

// -- event ------------------------------------------------------------

func executeEvent(data interface{}, rule *Rule, ctx *ExecContext, flags InstanceFlags) error {
	msg := rule.Msg
	if rule.ExpandMsg && msg != "" {
		out, err := ctx.DPI.ExpandStr(msg)
		if err != nil {
			return err
		}
		msg = out
	}

	var body []byte
	if rule.Data != "" {
		d := rule.Data
		if rule.ExpandData {
			out, err := ctx.DPI.ExpandStr(d)
			if err != nil {
				return err
			}
			d = out
		}
		body = []byte(d)
	}

	ctx.Events.Add(newObservation(rule, msg, body))
	return nil
}

// -- block ------------------------------------------------------------

func createBlock(params string) (interface{}, InstanceFlags, error) {
	mode := types.BlockModeAdvisory
	switch strings.ToLower(strings.TrimSpace(params)) {
	case "", "advisory":
		mode = types.BlockModeAdvisory
	case "phase":
		mode = types.BlockModePhase
	case "immediate":
		mode = types.BlockModeImmediate
	default:
		mode = types.BlockModeAdvisory
	}
	return mode, 0, nil
}

func executeBlock(data interface{}, rule *Rule, ctx *ExecContext, flags InstanceFlags) error {
	mode := data.(types.BlockMode)
	ctx.Intervention.Block(mode)
	if mode == types.BlockModeAdvisory {
		if cur, _ := ctx.DPI.Get("TX.BLOCK"); cur != nil {
			if _, err := ctx.DPI.Remove("TX.BLOCK"); err != nil {
				return err
			}
		}
		if err := ctx.DPI.AddNum("TX.BLOCK", 1); err != nil {
			return err
		}
	}
	return nil
}

// -- status -------------------------------------------------------------

func createStatus(params string) (interface{}, InstanceFlags, error) {
	code, err := strconv.Atoi(strings.TrimSpace(params))
	if err != nil || code < 200 || code >= 600 {
		return nil, 0, types.NewError(types.Invalid, "status requires 200 <= CODE < 600, got %q", params)
	}
	return code, 0, nil
}

func executeStatus(data interface{}, rule *Rule, ctx *ExecContext, flags InstanceFlags) error {
	ctx.Intervention.SetStatus(data.(int))
	return nil
}
