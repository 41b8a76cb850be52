package glxrenderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// Attribute layout is shared by both programs: 2D position at location 0,
// 2D texture coordinate at location 1.

const fadeVertexSrc = `
#version 330 core
layout(location = 0) in vec2 a_position;
layout(location = 1) in vec2 a_texcoord;
out vec2 v_texcoord;

void main() {
	gl_Position = vec4(a_position, 0.0, 1.0);
	v_texcoord = a_texcoord;
}
` + "\x00"

const fadeFragmentSrc = `
#version 330 core
in vec2 v_texcoord;
out vec4 frag_color;
uniform sampler2D cur_tex;
uniform sampler2D next_tex;
uniform float progress;
uniform float alpha;

void main() {
	vec4 cur = texture(cur_tex, v_texcoord);
	vec4 next = texture(next_tex, v_texcoord);
	vec4 color = mix(cur, next, progress);
	frag_color = vec4(color.rgb, color.a * alpha);
}
` + "\x00"

const scrollVertexSrc = `
#version 330 core
layout(location = 0) in vec2 a_position;
layout(location = 1) in vec2 a_texcoord;
out vec2 v_texcoord;
uniform float tex_offset;

void main() {
	gl_Position = vec4(a_position, 0.0, 1.0);
	v_texcoord = vec2(a_texcoord.x, a_texcoord.y + tex_offset);
}
` + "\x00"

const scrollFragmentSrc = `
#version 330 core
in vec2 v_texcoord;
out vec4 frag_color;
uniform sampler2D tex;

void main() {
	frag_color = texture(tex, v_texcoord);
}
` + "\x00"

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen)+1)
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader compile error: %s", infoLog)
	}
	return shader, nil
}

func compileProgram(vsrc, fsrc string) (uint32, error) {
	vs, err := compileShader(vsrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fsrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen)+1)
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(infoLog))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", infoLog)
	}
	return prog, nil
}
