package gpu

// Shader sources for the Dual Kawase engine's three GPU programs (one
// shared vertex shader plus the three fragment shaders), grounded on shaders.c's DEFAULT_VERTEX_SHADER and blur_kawase.c's
// downsample/upsample/finish fragment stages. Kept as Go string
// constants rather than loaded from disk: there is no
// WLBLUR_SHADER_PATH equivalent in this daemon, since these are the
// whole of the engine's fixed shader surface (spec §4.4), not
// end-user-replaceable assets.
const (
	vertexShaderSrc = `#version 300 es
precision mediump float;

layout(location = 0) in vec2 position;
out vec2 v_texcoord;

void main() {
    v_texcoord = position * 0.5 + 0.5;
    gl_Position = vec4(position, 0.0, 1.0);
}
`

	downsampleFragSrc = `#version 300 es
precision mediump float;

in vec2 v_texcoord;
out vec4 fragColor;

uniform sampler2D u_tex;
uniform vec2 u_halfpixel;
uniform float u_radius;

void main() {
    vec2 uv = v_texcoord;
    vec4 sum = texture(u_tex, uv) * 4.0;
    sum += texture(u_tex, uv - u_halfpixel.xy * u_radius);
    sum += texture(u_tex, uv + u_halfpixel.xy * u_radius);
    sum += texture(u_tex, uv + vec2(u_halfpixel.x, -u_halfpixel.y) * u_radius);
    sum += texture(u_tex, uv - vec2(u_halfpixel.x, -u_halfpixel.y) * u_radius);
    fragColor = sum / 8.0;
}
`

	upsampleFragSrc = `#version 300 es
precision mediump float;

in vec2 v_texcoord;
out vec4 fragColor;

uniform sampler2D u_tex;
uniform vec2 u_halfpixel;
uniform float u_radius;

void main() {
    vec2 uv = v_texcoord;
    vec4 sum = texture(u_tex, uv + vec2(-u_halfpixel.x * 2.0, 0.0) * u_radius);
    sum += texture(u_tex, uv + vec2(-u_halfpixel.x, u_halfpixel.y) * u_radius) * 2.0;
    sum += texture(u_tex, uv + vec2(0.0, u_halfpixel.y * 2.0) * u_radius);
    sum += texture(u_tex, uv + vec2(u_halfpixel.x, u_halfpixel.y) * u_radius) * 2.0;
    sum += texture(u_tex, uv + vec2(u_halfpixel.x * 2.0, 0.0) * u_radius);
    sum += texture(u_tex, uv + vec2(u_halfpixel.x, -u_halfpixel.y) * u_radius) * 2.0;
    sum += texture(u_tex, uv + vec2(0.0, -u_halfpixel.y * 2.0) * u_radius);
    sum += texture(u_tex, uv + vec2(-u_halfpixel.x, -u_halfpixel.y) * u_radius) * 2.0;
    fragColor = sum / 12.0;
}
`

	finishFragSrc = `#version 300 es
precision mediump float;

in vec2 v_texcoord;
out vec4 fragColor;

uniform sampler2D u_tex;
uniform float u_brightness;
uniform float u_contrast;
uniform float u_saturation;
uniform float u_noise;

float pseudoRandom(vec2 co) {
    return fract(sin(dot(co, vec2(12.9898, 78.233))) * 43758.5453);
}

void main() {
    vec4 c = texture(u_tex, v_texcoord);
    vec3 rgb = c.rgb;
    rgb *= u_brightness;
    rgb = (rgb - 0.5) * u_contrast + 0.5;
    float luma = dot(rgb, vec3(0.2126, 0.7152, 0.0722));
    rgb = mix(vec3(luma), rgb, u_saturation);
    rgb += (pseudoRandom(v_texcoord) - 0.5) * u_noise;
    fragColor = vec4(clamp(rgb, 0.0, 1.0), c.a);
}
`
)
