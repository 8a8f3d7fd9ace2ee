package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"justtrades-bot/internal/commands"
	"justtrades-bot/internal/notify"
)

// ToEmbed converts a platform-neutral message to a Discord embed.
func ToEmbed(msg notify.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		Color:       int(msg.Color),
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if msg.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: msg.Footer}
	}
	if !msg.Timestamp.IsZero() {
		embed.Timestamp = msg.Timestamp.Format(time.RFC3339)
	}
	return embed
}

func replyEmbeds(reply commands.Reply) []*discordgo.MessageEmbed {
	if reply.Message == nil {
		return nil
	}
	return []*discordgo.MessageEmbed{ToEmbed(*reply.Message)}
}

// SlashCommands builds the application command definitions for cmds.
// Aliases are prefix-only.
func SlashCommands(cmds []*commands.Command) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	for _, c := range cmds {
		ac := &discordgo.ApplicationCommand{
			Name:        c.Name,
			Description: c.Description,
		}
		for _, p := range c.Params {
			desc := p.Description
			if desc == "" {
				desc = p.Name
			}
			ac.Options = append(ac.Options, &discordgo.ApplicationCommandOption{
				Type:        optionType(p.Type),
				Name:        p.Name,
				Description: desc,
				Required:    p.Required,
			})
		}
		out = append(out, ac)
	}
	return out
}

func optionType(t commands.ParamType) discordgo.ApplicationCommandOptionType {
	switch t {
	case commands.TypeFloat:
		return discordgo.ApplicationCommandOptionNumber
	case commands.TypeInt:
		return discordgo.ApplicationCommandOptionInteger
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

// optionValues flattens interaction options into the map the command core
// parses.
func optionValues(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]interface{} {
	values := make(map[string]interface{}, len(opts))
	for _, o := range opts {
		values[o.Name] = o.Value
	}
	return values
}
