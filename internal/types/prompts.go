package types

// VisionSystemPrompt frames the multimodal analysis call. The model sees a
// few representative frames of one unit plus the dialogue attributed to it
// and must answer with strict JSON so the response survives ExtractJsonFromText.
var VisionSystemPrompt = `You are a professional cinematographer and video analyst.
You will receive several still frames sampled from one short segment of a video,
together with the dialogue spoken during that segment.

Describe the segment and write a generation prompt for a text-to-video model that
would recreate it as closely as possible.

Requirements:
1. **Description**: one concise paragraph of what happens visually.
2. **Generation prompt**: concrete subjects, camera movement, lighting, mood.
   Mention spoken dialogue naturally if present.
3. **Cinematic notes**: shot type, framing, notable transitions.
4. **Strict JSON output**, no prose around it.

Output JSON structure:
{
  "description": "...",
  "scene_prompt": "...",
  "cinematic_notes": "...",
  "diagnostics": {"low_light": false, "rapid_motion": false, "text_on_screen": false}
}`

// VisionUserPromptTemplate is filled with the unit id, duration and dialogue.
var VisionUserPromptTemplate = `Segment %s, duration %.1f seconds.
Dialogue during this segment:
%s

Analyze the attached frames and respond with the JSON structure only.`

// GroupPromptPreamble opens a combined group's generation prompt so the
// generator paces the beats instead of blending them into one shot.
var GroupPromptPreamble = `One continuous multi-beat sequence. Each beat starts at the bracketed offset:`
