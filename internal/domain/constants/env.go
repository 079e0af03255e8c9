package constants

// EnvLocal is the env.env value of a developer machine. Push authentication is skipped there.
const EnvLocal = "local"
