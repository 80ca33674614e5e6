package script

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/chazu/vxcsg/pkg/builder"
	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/kernel"
	"github.com/chazu/vxcsg/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keyword symbols never need registering as globals that could collide
//     with a user variable of the same name.
//  2. Kebab-case to underscore: rotate-any -> rotate_any, since zygomys
//     reads a bare hyphen between identifier characters as subtraction.
//
// Both transformations respect string literal boundaries and comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool        { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isKWChar(c byte) bool        { return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' }
func isIdentChar(c byte) bool     { return isLetter(c) || (c >= '0' && c <= '9') || c == '_' }
func isIdentStartChar(c byte) bool { return isLetter(c) }

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values between builtins
// ---------------------------------------------------------------------------

type sexpSolid struct{ solid *kernel.VoxelSolid }

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid volume=%d)", s.solid.Volume())
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

type sexpPartRef struct{ part *scene.Part }

func (p *sexpPartRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", p.part.Name)
}
func (p *sexpPartRef) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct{ x, y, z float64 }

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.3f %.3f %.3f)", v.x, v.y, v.z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
			continue
		}
		result.positional = append(result.positional, args[i])
		i++
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T", s)
}

func toInt32(s zygo.Sexp) (int32, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	return int32(f), nil
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T", s)
}

// toKeyword extracts a string value, stripping the __kw_ prefix left by
// preprocessSource when the value itself was written as a :keyword (the
// common case for axis/metric/role arguments).
func toKeyword(s zygo.Sexp) (string, error) {
	str, err := toString(s)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(str, kwPrefix), nil
}

func toAxis(s zygo.Sexp) (cell.Axis, error) {
	str, err := toKeyword(s)
	if err != nil {
		return 0, err
	}
	switch strings.ToLower(str) {
	case "x":
		return cell.AxisX, nil
	case "y":
		return cell.AxisY, nil
	case "z":
		return cell.AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", str)
}

func toMetric(s zygo.Sexp) (kernel.Metric, error) {
	str, err := toKeyword(s)
	if err != nil {
		return 0, err
	}
	switch strings.ToLower(str) {
	case "linf":
		return kernel.MetricLInf, nil
	case "l1":
		return kernel.MetricL1, nil
	case "l2":
		return kernel.MetricL2, nil
	}
	return 0, fmt.Errorf("unknown metric %q", str)
}

func toRole(s zygo.Sexp) (scene.Role, error) {
	str, err := toKeyword(s)
	if err != nil {
		return 0, err
	}
	switch strings.ToLower(str) {
	case "solid":
		return scene.RoleSolid, nil
	case "hole":
		return scene.RoleHole, nil
	case "intersect":
		return scene.RoleIntersect, nil
	}
	return 0, fmt.Errorf("unknown role %q", str)
}

func toSolid(s zygo.Sexp) (*kernel.VoxelSolid, error) {
	sol, ok := s.(*sexpSolid)
	if !ok {
		return nil, fmt.Errorf("expected solid, got %T", s)
	}
	return sol.solid, nil
}

func toPart(s zygo.Sexp) (*scene.Part, error) {
	p, ok := s.(*sexpPartRef)
	if !ok {
		return nil, fmt.Errorf("expected part, got %T", s)
	}
	return p.part, nil
}

func toVec3(s zygo.Sexp) (sexpVec3, error) {
	v, ok := s.(*sexpVec3)
	if !ok {
		return sexpVec3{}, fmt.Errorf("expected vec3, got %T", s)
	}
	return *v, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins wires every script function onto env, closing over the
// Scene that instance/part registration writes into. progress counts the
// defpart/instance/weld calls that register into the Scene and the
// bridge/strut calls that return a solid, so a caller that times out mid-script can report how much of it
// landed; see Engine.waitWithTimeout.
func registerBuiltins(env *zygo.Zlisp, sc *scene.Scene, progress *atomic.Int64) {
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires 3 arguments")
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{x: x, y: y, z: z}, nil
	})

	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 6 {
			return zygo.SexpNull, fmt.Errorf("box requires 6 arguments: x0 y0 z0 x1 y1 z1")
		}
		nums, err := toInt32s(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		b := builder.New()
		b.Box(cell.Cell{X: nums[0], Y: nums[1], Z: nums[2]}, cell.Cell{X: nums[3], Y: nums[4], Z: nums[5]})
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("sphere requires 4 arguments: cx cy cz radius")
		}
		nums, err := toInt32s(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		b := builder.New()
		b.Sphere(cell.Cell{X: nums[0], Y: nums[1], Z: nums[2]}, nums[3])
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("cylinder_x", cylinderBuiltin("cylinder-x", (*builder.Builder).CylinderX))
	env.AddFunction("cylinder_y", cylinderBuiltin("cylinder-y", (*builder.Builder).CylinderY))
	env.AddFunction("cylinder_z", cylinderBuiltin("cylinder-z", (*builder.Builder).CylinderZ))

	env.AddFunction("cut_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 7 {
			return zygo.SexpNull, fmt.Errorf("cut-box requires 7 arguments: base x0 y0 z0 x1 y1 z1")
		}
		base, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut-box: base: %w", err)
		}
		nums, err := toInt32s(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut-box: %w", err)
		}
		b := builder.New()
		b.Merge(base)
		b.CutBox(cell.Cell{X: nums[0], Y: nums[1], Z: nums[2]}, cell.Cell{X: nums[3], Y: nums[4], Z: nums[5]})
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("cut_sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 5 {
			return zygo.SexpNull, fmt.Errorf("cut-sphere requires 5 arguments: base cx cy cz radius")
		}
		base, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut-sphere: base: %w", err)
		}
		nums, err := toInt32s(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut-sphere: %w", err)
		}
		b := builder.New()
		b.Merge(base)
		b.CutSphere(cell.Cell{X: nums[0], Y: nums[1], Z: nums[2]}, nums[3])
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("cut_cylinder_x", cutCylinderBuiltin("cut-cylinder-x", (*builder.Builder).CutCylinderX))
	env.AddFunction("cut_cylinder_y", cutCylinderBuiltin("cut-cylinder-y", (*builder.Builder).CutCylinderY))
	env.AddFunction("cut_cylinder_z", cutCylinderBuiltin("cut-cylinder-z", (*builder.Builder).CutCylinderZ))

	env.AddFunction("union", solidBinaryOp("union", (*builder.Builder).Union))
	env.AddFunction("subtract", solidBinaryOp("subtract", (*builder.Builder).Subtract))
	env.AddFunction("intersect", solidBinaryOp("intersect", (*builder.Builder).Intersect))

	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("translate requires 4 arguments: solid dx dy dz")
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		d, err := toInt32s(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		b := builder.New()
		b.Translate(cell.Cell{X: d[0], Y: d[1], Z: d[2]})
		b.Merge(s)
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("rotate90", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("rotate90 requires a solid as the first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate90: %w", err)
		}
		axis, err := toAxis(pa.kw["axis"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate90: axis: %w", err)
		}
		k := 1
		if v, ok := pa.kw["k"]; ok {
			ik, err := toInt32(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate90: k: %w", err)
			}
			k = int(ik)
		}
		b := builder.New()
		b.Rotate90(axis, k)
		b.Merge(s)
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("mirror", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("mirror requires a solid as the first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mirror: %w", err)
		}
		axis, err := toAxis(pa.kw["axis"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mirror: axis: %w", err)
		}
		b := builder.New()
		b.Mirror(axis)
		b.Merge(s)
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("rotate_any", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("rotate-any requires a solid as the first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-any: %w", err)
		}
		axis, err := toAxis(pa.kw["axis"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-any: axis: %w", err)
		}
		degrees, err := toFloat64(pa.kw["degrees"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-any: degrees: %w", err)
		}
		pivot := [3]float64{0, 0, 0}
		if v, ok := pa.kw["pivot"]; ok {
			pv, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate-any: pivot: %w", err)
			}
			pivot = [3]float64{pv.x, pv.y, pv.z}
		}
		b := builder.New()
		if err := b.RotateAny(axis, degrees, pivot, func(c *builder.Builder) { c.Merge(s) }); err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-any: %w", err)
		}
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("place requires an offset vec3 and at least one solid")
		}
		offset, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: offset: %w", err)
		}
		solids, err := toSolids(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		b := builder.New()
		b.Place(cell.Cell{X: int32(offset.x), Y: int32(offset.y), Z: int32(offset.z)}, func(c *builder.Builder) {
			for _, s := range solids {
				c.Merge(s)
			}
		})
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("array_x", arrayBuiltin("array-x", (*builder.Builder).ArrayX))
	env.AddFunction("array_y", arrayBuiltin("array-y", (*builder.Builder).ArrayY))

	env.AddFunction("grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 5 {
			return zygo.SexpNull, fmt.Errorf("grid requires 5 arguments: nx ny stepX stepY solid")
		}
		nx, err := toInt32(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: nx: %w", err)
		}
		ny, err := toInt32(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: ny: %w", err)
		}
		stepX, err := toInt32(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: stepX: %w", err)
		}
		stepY, err := toInt32(args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: stepY: %w", err)
		}
		s, err := toSolid(args[4])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: solid: %w", err)
		}
		b := builder.New()
		b.Grid(int(nx), int(ny), stepX, stepY, func(i, j int, c *builder.Builder) { c.Merge(s) })
		return &sexpSolid{solid: b.Solid()}, nil
	})

	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a solid")
		}
		partName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		s, err := toSolid(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: solid: %w", err)
		}
		role := scene.RoleSolid
		if v, ok := pa.kw["role"]; ok {
			role, err = toRole(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defpart: role: %w", err)
			}
		}
		part := sc.AddPart(partName, s, role)
		progress.Add(1)
		return &sexpPartRef{part: part}, nil
	})

	env.AddFunction("instance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("instance requires a part as the first argument")
		}
		part, err := toPart(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("instance: %w", err)
		}

		frame := scene.Identity()
		if v, ok := pa.kw["translate"]; ok {
			tv, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("instance: translate: %w", err)
			}
			frame.Translation = cell.Cell{X: int32(tv.x), Y: int32(tv.y), Z: int32(tv.z)}
		}

		role := part.DefaultRole
		if v, ok := pa.kw["role"]; ok {
			role, err = toRole(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("instance: role: %w", err)
			}
		}

		sc.AddInstance(&scene.Instance{Part: part, Frame: frame, Role: role})
		progress.Add(1)
		return zygo.SexpNull, nil
	})

	env.AddFunction("weld", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 3 {
			return zygo.SexpNull, fmt.Errorf("weld requires a name and two solids")
		}
		weldName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("weld: name: %w", err)
		}
		a, err := toSolid(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("weld: a: %w", err)
		}
		b, err := toSolid(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("weld: b: %w", err)
		}
		metric := kernel.MetricLInf
		if v, ok := pa.kw["metric"]; ok {
			metric, err = toMetric(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("weld: metric: %w", err)
			}
		}
		part, _, err := sc.Weld(weldName, a, b, metric)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("weld: %w", err)
		}
		progress.Add(1)
		return &sexpPartRef{part: part}, nil
	})

	env.AddFunction("bridge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("bridge requires two solids")
		}
		a, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bridge: a: %w", err)
		}
		b, err := toSolid(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bridge: b: %w", err)
		}
		axis, err := toAxis(pa.kw["axis"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bridge: axis: %w", err)
		}
		thickness, err := toInt32(pa.kw["thickness"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bridge: thickness: %w", err)
		}
		progress.Add(1)
		return &sexpSolid{solid: scene.BridgeAxis(a, b, axis, thickness, nil)}, nil
	})

	env.AddFunction("strut", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("strut requires two solids")
		}
		a, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("strut: a: %w", err)
		}
		b, err := toSolid(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("strut: b: %w", err)
		}
		radius := int32(0)
		if v, ok := pa.kw["radius"]; ok {
			radius, err = toInt32(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("strut: radius: %w", err)
			}
		}
		progress.Add(1)
		return &sexpSolid{solid: scene.Strut(a, b, radius)}, nil
	})
}

func toInt32s(args []zygo.Sexp) ([]int32, error) {
	out := make([]int32, len(args))
	for i, a := range args {
		v, err := toInt32(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func toSolids(args []zygo.Sexp) ([]*kernel.VoxelSolid, error) {
	out := make([]*kernel.VoxelSolid, len(args))
	for i, a := range args {
		s, err := toSolid(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// cylinderBuiltin wraps one of Builder's CylinderX/Y/Z emitters: a fresh
// builder emits the primitive and the resulting solid is handed back as a
// plain expression value, matching box/sphere's style.
func cylinderBuiltin(label string, emit func(*builder.Builder, int32, int32, int32, int32, int32)) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 5 {
			return zygo.SexpNull, fmt.Errorf("%s requires 5 arguments: a0 a1 centerB0 centerB1 radius", label)
		}
		nums, err := toInt32s(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		b := builder.New()
		emit(b, nums[0], nums[1], nums[2], nums[3], nums[4])
		return &sexpSolid{solid: b.Solid()}, nil
	}
}

// cutCylinderBuiltin is cylinderBuiltin's inverse: it merges a base solid
// into a fresh builder, then cuts the cylinder out of it.
func cutCylinderBuiltin(label string, cut func(*builder.Builder, int32, int32, int32, int32, int32)) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 6 {
			return zygo.SexpNull, fmt.Errorf("%s requires 6 arguments: base a0 a1 centerB0 centerB1 radius", label)
		}
		base, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: base: %w", label, err)
		}
		nums, err := toInt32s(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		b := builder.New()
		b.Merge(base)
		cut(b, nums[0], nums[1], nums[2], nums[3], nums[4])
		return &sexpSolid{solid: b.Solid()}, nil
	}
}

// solidBinaryOp wraps one of Builder's Union/Subtract/Intersect scopes: a
// is merged into a fresh builder, then the scope merges b before combine
// applies the named boolean operator.
func solidBinaryOp(label string, combine func(*builder.Builder, func(*builder.Builder))) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires 2 solids", label)
		}
		a, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: a: %w", label, err)
		}
		b, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: b: %w", label, err)
		}
		bb := builder.New()
		bb.Merge(a)
		combine(bb, func(c *builder.Builder) { c.Merge(b) })
		return &sexpSolid{solid: bb.Solid()}, nil
	}
}

// arrayBuiltin wraps Builder's ArrayX/ArrayY: solid is placed n times at
// step increments along the named axis and unioned together.
func arrayBuiltin(label string, arrange func(*builder.Builder, int, int32, func(int, *builder.Builder))) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("%s requires 3 arguments: n step solid", label)
		}
		n, err := toInt32(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: n: %w", label, err)
		}
		step, err := toInt32(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: step: %w", label, err)
		}
		s, err := toSolid(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: solid: %w", label, err)
		}
		b := builder.New()
		arrange(b, int(n), step, func(i int, c *builder.Builder) { c.Merge(s) })
		return &sexpSolid{solid: b.Solid()}, nil
	}
}
